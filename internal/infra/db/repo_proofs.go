package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sealreg/internal/domain"
)

type ProofRepository struct {
	db *gorm.DB
}

func NewProofRepository(gdb *gorm.DB) *ProofRepository {
	return &ProofRepository{db: gdb}
}

func (r *ProofRepository) Create(ctx context.Context, record domain.ProofRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := proofModelFromDomain(record)
	model.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ProofRepository) GetByID(ctx context.Context, id string) (*domain.ProofRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ProofRecordModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	record := proofDomainFromModel(model)
	return &record, nil
}

// TransferOwner updates the owner column and nothing else.
func (r *ProofRepository) TransferOwner(ctx context.Context, id, newOwner string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&ProofRecordModel{}).
		Where("id = ?", id).
		Update("owner", newOwner)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AttachAccessList binds an access list to a record once; it does not
// overwrite an existing binding.
func (r *ProofRepository) AttachAccessList(ctx context.Context, id, accessListID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&ProofRecordModel{}).
		Where("id = ? AND access_list_id IS NULL", id).
		Update("access_list_id", accessListID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func proofModelFromDomain(record domain.ProofRecord) ProofRecordModel {
	model := ProofRecordModel{
		ID:            record.ID,
		DatasetID:     record.DatasetID,
		ContentHash:   record.ContentHash,
		MetadataHash:  record.MetadataHash,
		BlobRef:       record.BlobRef,
		PolicyRef:     record.PolicyRef,
		Name:          record.Name,
		Description:   record.Description,
		MediaType:     record.MediaType,
		SizeBytes:     record.SizeBytes,
		SchemaVersion: record.SchemaVersion,
		VerifiedAtMS:  record.VerifiedAtMS,
		Attester:      record.Attester,
		Signature:     record.Signature,
		Owner:         record.Owner,
	}
	if record.AccessListID != "" {
		id := record.AccessListID
		model.AccessListID = &id
	}
	return model
}

func proofDomainFromModel(model ProofRecordModel) domain.ProofRecord {
	record := domain.ProofRecord{
		ID:            model.ID,
		DatasetID:     model.DatasetID,
		ContentHash:   model.ContentHash,
		MetadataHash:  model.MetadataHash,
		BlobRef:       model.BlobRef,
		PolicyRef:     model.PolicyRef,
		Name:          model.Name,
		Description:   model.Description,
		MediaType:     model.MediaType,
		SizeBytes:     model.SizeBytes,
		SchemaVersion: model.SchemaVersion,
		VerifiedAtMS:  model.VerifiedAtMS,
		Attester:      model.Attester,
		Signature:     model.Signature,
		Owner:         model.Owner,
		CreatedAt:     model.CreatedAt,
	}
	if model.AccessListID != nil {
		record.AccessListID = *model.AccessListID
	}
	return record
}

type AttesterConfigRepository struct {
	db *gorm.DB
}

func NewAttesterConfigRepository(gdb *gorm.DB) *AttesterConfigRepository {
	return &AttesterConfigRepository{db: gdb}
}

func (r *AttesterConfigRepository) GetByID(ctx context.Context, attesterID string) (*domain.AttesterConfig, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AttesterConfigModel
	err := r.db.WithContext(ctx).First(&model, "attester_id = ?", attesterID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &domain.AttesterConfig{
		AttesterID: model.AttesterID,
		Alg:        model.Alg,
		PublicKey:  model.PublicKey,
	}, nil
}

// Register appends a trusted attester key. The store is append-only; there
// is no update path.
func (r *AttesterConfigRepository) Register(ctx context.Context, cfg domain.AttesterConfig) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := AttesterConfigModel{
		AttesterID: cfg.AttesterID,
		Alg:        cfg.Alg,
		PublicKey:  cfg.PublicKey,
		CreatedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}
