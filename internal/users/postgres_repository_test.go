package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func userColumns() []string {
	return []string{"id", "phone_number", "name", "email", "created_at", "updated_at"}
}

func TestPostgresGetOrCreateByPhone_Existing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	id := uuid.NewString()
	mock.ExpectQuery("SELECT id, phone_number").
		WithArgs("15551234567").
		WillReturnRows(pgxmock.NewRows(userColumns()).AddRow(id, "15551234567", "Jane", "", now, now))

	repo := NewPostgresRepository(mock)
	user, err := repo.GetOrCreateByPhone(context.Background(), "15551234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != id || user.Name != "Jane" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresGetOrCreateByPhone_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	id := uuid.NewString()
	mock.ExpectQuery("SELECT id, phone_number").
		WithArgs("15559990000").
		WillReturnRows(pgxmock.NewRows(userColumns()))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "15559990000", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT id, phone_number").
		WithArgs("15559990000").
		WillReturnRows(pgxmock.NewRows(userColumns()).AddRow(id, "15559990000", "", "", now, now))

	repo := NewPostgresRepository(mock)
	user, err := repo.GetOrCreateByPhone(context.Background(), "15559990000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Phone != "15559990000" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresUpdateName_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("UPDATE users SET name").
		WithArgs("Jane", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	if err := repo.UpdateName(context.Background(), "missing", "Jane"); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
