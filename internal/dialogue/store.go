package dialogue

import (
	"context"
	"sync"
)

// StateStore persists per-user conversation state between turns.
type StateStore interface {
	// Load returns the user's current state and draft. A user with no row
	// starts at Greeting with an empty draft.
	Load(ctx context.Context, userID string) (State, BookingDraft, error)
	// Save upserts the user's state and draft.
	Save(ctx context.Context, userID string, state State, draft BookingDraft) error
}

// MemoryStateStore keeps conversation state in a map. Used in tests and
// when running without Postgres.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]memoryEntry
}

type memoryEntry struct {
	state State
	draft BookingDraft
}

// NewMemoryStateStore creates an empty store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]memoryEntry)}
}

// Load returns the stored state or the Greeting default.
func (s *MemoryStateStore) Load(_ context.Context, userID string) (State, BookingDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.states[userID]
	if !ok {
		return StateGreeting, BookingDraft{}, nil
	}
	return entry.state, entry.draft, nil
}

// Save stores the state and draft for the user.
func (s *MemoryStateStore) Save(_ context.Context, userID string, state State, draft BookingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = memoryEntry{state: state, draft: draft}
	return nil
}

var _ StateStore = (*MemoryStateStore)(nil)
