package usecase

import (
	"context"
	"errors"
	"testing"

	"sealreg/internal/domain"
)

func newAccessControl() (*AccessControl, *memListRepo) {
	repo := newMemListRepo()
	return &AccessControl{Lists: repo}, repo
}

func TestAccessControl_AddRemoveMembership(t *testing.T) {
	uc, _ := newAccessControl()
	ctx := context.Background()

	list, cap, err := uc.Create(ctx, "research-team")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cap.AccessListID != list.ID {
		t.Fatal("capability not bound to the new list")
	}

	if err := uc.AddMember(ctx, list.ID, cap.ID, "alice"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := uc.AddMember(ctx, list.ID, cap.ID, "alice"); !errors.Is(err, domain.ErrDuplicateMember) {
		t.Fatalf("duplicate add: err = %v, want ErrDuplicateMember", err)
	}

	if err := uc.RemoveMember(ctx, list.ID, cap.ID, "alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	current, err := uc.Lists.Get(ctx, list.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.HasMember("alice") {
		t.Fatal("member still present after removal")
	}

	// Removing an absent principal is silently idempotent.
	if err := uc.RemoveMember(ctx, list.ID, cap.ID, "nobody"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestAccessControl_CapabilityBoundToOneList(t *testing.T) {
	uc, _ := newAccessControl()
	ctx := context.Background()

	listA, capA, err := uc.Create(ctx, "team-a")
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	listB, _, err := uc.Create(ctx, "team-b")
	if err != nil {
		t.Fatalf("create b: %v", err)
	}

	if err := uc.AddMember(ctx, listB.ID, capA.ID, "mallory"); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("cross-list capability: err = %v, want ErrNotOwner", err)
	}
	if err := uc.AddMember(ctx, listA.ID, "no-such-cap", "mallory"); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("unknown capability: err = %v, want ErrNotOwner", err)
	}
}

func TestAccessControl_NamespaceIsStable(t *testing.T) {
	uc, _ := newAccessControl()
	ctx := context.Background()

	list, _, err := uc.Create(ctx, "team")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := uc.Namespace(ctx, list.ID)
	if err != nil {
		t.Fatalf("namespace: %v", err)
	}
	second, err := uc.Namespace(ctx, list.ID)
	if err != nil {
		t.Fatalf("namespace: %v", err)
	}
	if len(first) != 16 || string(first) != string(second) {
		t.Fatalf("namespace not a stable 16-byte prefix: %x vs %x", first, second)
	}
}

func TestAccessControl_Attachments(t *testing.T) {
	uc, repo := newAccessControl()
	ctx := context.Background()

	list, cap, err := uc.Create(ctx, "team")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := uc.Attach(ctx, list.ID, cap.ID, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	stored := repo.lists[list.ID]
	if _, ok := stored.Attachments[string([]byte{0x01, 0x02})]; !ok {
		t.Fatal("attachment marker missing")
	}
}
