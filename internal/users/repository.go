package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for user storage
type Repository interface {
	// GetOrCreateByPhone resolves a sender phone number to a durable user,
	// inserting a new record on first contact.
	GetOrCreateByPhone(ctx context.Context, phone string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateName(ctx context.Context, id, name string) error
	List(ctx context.Context) ([]User, error)
}

// InMemoryRepository is a Repository backed by a map, used in tests and
// queue-less development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byPhone map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*User),
		byPhone: make(map[string]string),
	}
}

// GetOrCreateByPhone looks up by phone and inserts on first contact.
func (r *InMemoryRepository) GetOrCreateByPhone(ctx context.Context, phone string) (*User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrMissingPhone
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byPhone[phone]; ok {
		copied := *r.byID[id]
		return &copied, nil
	}

	now := time.Now().UTC()
	user := &User{
		ID:        uuid.NewString(),
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[user.ID] = user
	r.byPhone[phone] = user.ID

	copied := *user
	return &copied, nil
}

// GetByID retrieves a user by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// UpdateName sets the collected display name.
func (r *InMemoryRepository) UpdateName(ctx context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Name = strings.TrimSpace(name)
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// List returns all users ordered by creation time, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.byID))
	for _, user := range r.byID {
		out = append(out, *user)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}
