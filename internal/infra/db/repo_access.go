package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sealreg/internal/domain"
)

type AccessListRepository struct {
	db *gorm.DB
}

func NewAccessListRepository(gdb *gorm.DB) *AccessListRepository {
	return &AccessListRepository{db: gdb}
}

func (r *AccessListRepository) Create(ctx context.Context, list domain.AccessList, cap domain.AdminCapability) error {
	if r.db == nil {
		return errDBUnavailable
	}
	now := time.Now().UTC()
	listModel := AccessListModel{ID: list.ID, Name: list.Name, CreatedAt: now}
	capModel := AdminCapabilityModel{ID: cap.ID, AccessListID: cap.AccessListID, CreatedAt: now}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&listModel).Error; err != nil {
			return err
		}
		return tx.Create(&capModel).Error
	})
}

func (r *AccessListRepository) Get(ctx context.Context, id string) (*domain.AccessList, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AccessListModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var members []AccessMemberModel
	if err := r.db.WithContext(ctx).
		Where("access_list_id = ?", id).
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	var attachments []AccessAttachmentModel
	if err := r.db.WithContext(ctx).
		Where("access_list_id = ?", id).
		Find(&attachments).Error; err != nil {
		return nil, err
	}

	list := domain.AccessList{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
	}
	for _, m := range members {
		list.Members = append(list.Members, m.Principal)
	}
	for _, a := range attachments {
		list.Attach(a.Key)
	}
	return &list, nil
}

func (r *AccessListRepository) GetCapability(ctx context.Context, capID string) (*domain.AdminCapability, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AdminCapabilityModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", capID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &domain.AdminCapability{
		ID:           model.ID,
		AccessListID: model.AccessListID,
		CreatedAt:    model.CreatedAt,
	}, nil
}

// Save replaces the list's members and attachments with the aggregate's
// current state. The host serializes mutations per list, so the
// delete-and-insert inside one transaction is race-free.
func (r *AccessListRepository) Save(ctx context.Context, list *domain.AccessList) error {
	if r.db == nil {
		return errDBUnavailable
	}
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("access_list_id = ?", list.ID).Delete(&AccessMemberModel{}).Error; err != nil {
			return err
		}
		for _, principal := range list.Members {
			member := AccessMemberModel{AccessListID: list.ID, Principal: principal, CreatedAt: now}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("access_list_id = ?", list.ID).Delete(&AccessAttachmentModel{}).Error; err != nil {
			return err
		}
		for key := range list.Attachments {
			attachment := AccessAttachmentModel{AccessListID: list.ID, Key: []byte(key), CreatedAt: now}
			if err := tx.Create(&attachment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Destroy removes a list and its dependents. Production flows never destroy
// lists; this exists for test teardown only.
func (r *AccessListRepository) Destroy(ctx context.Context, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("access_list_id = ?", id).Delete(&AccessMemberModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("access_list_id = ?", id).Delete(&AccessAttachmentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("access_list_id = ?", id).Delete(&AdminCapabilityModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&AccessListModel{}, "id = ?", id).Error
	})
}
