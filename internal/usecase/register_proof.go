package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sealreg/internal/domain"
	"sealreg/internal/infra/crypto"
	"sealreg/pkg/attest"
)

type RegisterProofRequest struct {
	Payload    domain.VerificationPayload
	Signature  []byte
	AttesterID string
	Owner      string
}

// RegisterProof is the registry's write path: reconstruct, verify, mint.
// Nothing is persisted unless the attestation checks out.
type RegisterProof struct {
	Proofs        ProofRepository
	Attesters     AttesterConfigRepository
	AttesterCache AttesterConfigCache
	Crypto        AttestationVerifier
	Policy        PolicyEngine
	CacheTTL      time.Duration
	NowMS         func() uint64
}

func (uc *RegisterProof) Execute(ctx context.Context, req RegisterProofRequest) (*domain.ProofRecord, error) {
	if err := attest.ValidatePayload(req.Payload); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if req.Owner == "" {
		return nil, errors.New("owner is required")
	}

	cfg, err := uc.attesterConfig(ctx, req.AttesterID)
	if err != nil {
		return nil, err
	}

	ok, err := uc.Crypto.VerifyAttestation(*cfg, domain.IntentDatasetRegistration, req.Payload.TimestampMS, req.Payload, req.Signature)
	if err != nil {
		return nil, fmt.Errorf("attester configuration: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidSignature
	}

	if uc.Policy != nil {
		eval, err := uc.Policy.Evaluate(ctx, domain.PolicyInput{
			Payload:  req.Payload,
			Attester: req.AttesterID,
			Owner:    req.Owner,
		})
		if err != nil {
			return nil, err
		}
		if !eval.Result.Allow {
			return nil, policyRejection(eval)
		}
	}

	// Only verified payload fields flow into the record from here on.
	verified := req.Payload
	record := domain.ProofRecord{
		ID:            uuid.NewString(),
		DatasetID:     verified.DatasetID,
		ContentHash:   verified.ContentHash,
		MetadataHash:  crypto.MetadataHash(verified),
		BlobRef:       verified.BlobRef,
		PolicyRef:     verified.PolicyRef,
		Name:          verified.Name,
		Description:   verified.Description,
		MediaType:     verified.MediaType,
		SizeBytes:     verified.SizeBytes,
		SchemaVersion: domain.PayloadSchemaV1,
		VerifiedAtMS:  uc.now(),
		Attester:      req.AttesterID,
		Signature:     req.Signature,
		Owner:         req.Owner,
	}
	if err := uc.Proofs.Create(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Transfer changes the record's owner and nothing else.
func (uc *RegisterProof) Transfer(ctx context.Context, recordID, currentOwner, newOwner string) error {
	if newOwner == "" {
		return errors.New("new owner is required")
	}
	record, err := uc.Proofs.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record.Owner != currentOwner {
		return domain.ErrNotOwner
	}
	return uc.Proofs.TransferOwner(ctx, recordID, newOwner)
}

func (uc *RegisterProof) attesterConfig(ctx context.Context, attesterID string) (*domain.AttesterConfig, error) {
	if attesterID == "" {
		return nil, errors.New("attester_id is required")
	}
	if uc.AttesterCache != nil {
		if cfg, ok, err := uc.AttesterCache.Get(ctx, attesterID); err == nil && ok && cfg != nil {
			return cfg, nil
		}
	}
	cfg, err := uc.Attesters.GetByID(ctx, attesterID)
	if err != nil {
		return nil, err
	}
	if uc.AttesterCache != nil {
		_ = uc.AttesterCache.Put(ctx, attesterID, *cfg, uc.CacheTTL)
	}
	return cfg, nil
}

func (uc *RegisterProof) now() uint64 {
	if uc.NowMS != nil {
		return uc.NowMS()
	}
	return uint64(time.Now().UnixMilli())
}

func policyRejection(eval domain.PolicyEvaluation) error {
	if len(eval.Result.Deny) == 0 {
		return domain.ErrPolicyRejected
	}
	reason := eval.Result.Deny[0]
	return fmt.Errorf("%w: %s", domain.ErrPolicyRejected, reason.Code)
}
