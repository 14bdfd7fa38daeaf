package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// GetOrCreateByPhone looks the sender up by phone number and inserts a row on
// first contact. Exactly one insert happens per phone, concurrent callers
// included: the insert is ON CONFLICT DO NOTHING followed by a re-read.
func (r *PostgresRepository) GetOrCreateByPhone(ctx context.Context, phone string) (*User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrMissingPhone
	}

	if user, err := r.getByPhone(ctx, phone); err == nil {
		return user, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	id := uuid.New()
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (phone_number) DO NOTHING
	`, id, phone, now)
	if err != nil {
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}

	return r.getByPhone(ctx, phone)
}

func (r *PostgresRepository) getByPhone(ctx context.Context, phone string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, phone_number, COALESCE(name, ''), COALESCE(email, ''), created_at, updated_at
		FROM users
		WHERE phone_number = $1
	`, phone)
	return scanUser(row)
}

// GetByID fetches a user by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, phone_number, COALESCE(name, ''), COALESCE(email, ''), created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

// UpdateName persists the collected display name.
func (r *PostgresRepository) UpdateName(ctx context.Context, id, name string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET name = $1, updated_at = $2 WHERE id = $3
	`, strings.TrimSpace(name), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("users: update name failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns all users, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, phone_number, COALESCE(name, ''), COALESCE(email, ''), created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Phone, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Phone, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &user, nil
}
