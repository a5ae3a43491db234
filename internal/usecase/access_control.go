package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sealreg/internal/domain"
)

// AccessControl manages access lists. Every mutation requires presenting the
// admin capability minted with the list; there is no recovery path for a
// lost capability.
type AccessControl struct {
	Lists AccessListRepository
	Now   func() time.Time
}

func (uc *AccessControl) Create(ctx context.Context, name string) (*domain.AccessList, *domain.AdminCapability, error) {
	if name == "" {
		return nil, nil, errors.New("name is required")
	}
	now := uc.now()
	list := domain.AccessList{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
	}
	cap := domain.AdminCapability{
		ID:           uuid.NewString(),
		AccessListID: list.ID,
		CreatedAt:    now,
	}
	if err := uc.Lists.Create(ctx, list, cap); err != nil {
		return nil, nil, err
	}
	return &list, &cap, nil
}

func (uc *AccessControl) AddMember(ctx context.Context, listID, capID, principal string) error {
	if principal == "" {
		return errors.New("principal is required")
	}
	list, err := uc.authorize(ctx, listID, capID)
	if err != nil {
		return err
	}
	if err := list.AddMember(principal); err != nil {
		return err
	}
	return uc.Lists.Save(ctx, list)
}

func (uc *AccessControl) RemoveMember(ctx context.Context, listID, capID, principal string) error {
	list, err := uc.authorize(ctx, listID, capID)
	if err != nil {
		return err
	}
	if !list.HasMember(principal) {
		return nil
	}
	list.RemoveMember(principal)
	return uc.Lists.Save(ctx, list)
}

func (uc *AccessControl) Attach(ctx context.Context, listID, capID string, key []byte) error {
	if len(key) == 0 {
		return errors.New("attachment key is required")
	}
	list, err := uc.authorize(ctx, listID, capID)
	if err != nil {
		return err
	}
	list.Attach(key)
	return uc.Lists.Save(ctx, list)
}

func (uc *AccessControl) Namespace(ctx context.Context, listID string) ([]byte, error) {
	list, err := uc.Lists.Get(ctx, listID)
	if err != nil {
		return nil, err
	}
	return list.Namespace()
}

func (uc *AccessControl) authorize(ctx context.Context, listID, capID string) (*domain.AccessList, error) {
	list, err := uc.Lists.Get(ctx, listID)
	if err != nil {
		return nil, err
	}
	cap, err := uc.Lists.GetCapability(ctx, capID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotOwner
		}
		return nil, err
	}
	if !cap.Controls(list) {
		return nil, domain.ErrNotOwner
	}
	return list, nil
}

func (uc *AccessControl) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}
