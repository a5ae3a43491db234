//go:build devregister

package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sealreg/internal/domain"
	"sealreg/internal/infra/crypto"
	"sealreg/pkg/attest"
)

// ExecuteUnverified mints a record without consulting the verifier. It
// exists only to unblock integration testing before an attester is
// available and is compiled out of production builds; no production entry
// point can reach it.
func (uc *RegisterProof) ExecuteUnverified(ctx context.Context, req RegisterProofRequest) (*domain.ProofRecord, error) {
	if err := attest.ValidatePayload(req.Payload); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	record := domain.ProofRecord{
		ID:            uuid.NewString(),
		DatasetID:     req.Payload.DatasetID,
		ContentHash:   req.Payload.ContentHash,
		MetadataHash:  crypto.MetadataHash(req.Payload),
		BlobRef:       req.Payload.BlobRef,
		PolicyRef:     req.Payload.PolicyRef,
		Name:          req.Payload.Name,
		Description:   req.Payload.Description,
		MediaType:     req.Payload.MediaType,
		SizeBytes:     req.Payload.SizeBytes,
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
