package users

import (
	"context"
	"testing"
)

func TestGetOrCreateByPhone_CreatesOnce(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first, err := repo.GetOrCreateByPhone(ctx, "15551234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated user ID")
	}

	second, err := repo.GetOrCreateByPhone(ctx, "15551234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same user on second contact, got %s and %s", first.ID, second.ID)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected exactly one user, got %d", len(all))
	}
}

func TestGetOrCreateByPhone_EmptyPhone(t *testing.T) {
	repo := NewInMemoryRepository()

	if _, err := repo.GetOrCreateByPhone(context.Background(), "  "); err != ErrMissingPhone {
		t.Errorf("expected ErrMissingPhone, got %v", err)
	}
}

func TestUpdateName(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	user, err := repo.GetOrCreateByPhone(ctx, "15551234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.UpdateName(ctx, user.ID, " Jane Doe "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Jane Doe" {
		t.Errorf("expected trimmed name, got %q", updated.Name)
	}
	if updated.DisplayName() != "Jane Doe" {
		t.Errorf("expected display name Jane Doe, got %q", updated.DisplayName())
	}
}

func TestUpdateName_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	if err := repo.UpdateName(context.Background(), "missing", "x"); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDisplayName_FallsBackToPhone(t *testing.T) {
	user := &User{Phone: "15551234567"}
	if user.DisplayName() != "15551234567" {
		t.Errorf("expected phone fallback, got %q", user.DisplayName())
	}
}
