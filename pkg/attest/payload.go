package attest

import (
	"errors"

	"sealreg/internal/domain"
)

type PayloadInput struct {
	DatasetID   string
	Name        string
	Description string
	MediaType   string
	SizeBytes   uint64
	ContentHash []byte
	BlobRef     string
	PolicyRef   string
	TimestampMS uint64
	SubmittedBy string
}

func BuildPayload(input PayloadInput) (domain.VerificationPayload, error) {
	payload := domain.VerificationPayload{
		DatasetID:   input.DatasetID,
		Name:        input.Name,
		Description: input.Description,
		MediaType:   input.MediaType,
		SizeBytes:   input.SizeBytes,
		ContentHash: input.ContentHash,
		BlobRef:     input.BlobRef,
		PolicyRef:   input.PolicyRef,
		TimestampMS: input.TimestampMS,
		SubmittedBy: input.SubmittedBy,
	}
	if err := ValidatePayload(payload); err != nil {
		return domain.VerificationPayload{}, err
	}
	return payload, nil
}

func ValidatePayload(payload domain.VerificationPayload) error {
	if payload.DatasetID == "" {
		return errors.New("dataset_id is required")
	}
	if payload.Name == "" {
		return errors.New("name is required")
	}
	if payload.MediaType == "" {
		return errors.New("media_type is required")
	}
	if len(payload.ContentHash) == 0 {
		return errors.New("content_hash is required")
	}
	if payload.BlobRef == "" || payload.PolicyRef == "" {
		return errors.New("blob_ref and policy_ref are required")
	}
	if payload.TimestampMS == 0 {
		return errors.New("timestamp_ms is required")
	}
	if payload.SubmittedBy == "" {
		return errors.New("submitted_by is required")
	}
	return nil
}
