package dialogue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStateStore persists conversation state in the dialogue_states
// table, one row per user with the draft as a jsonb context blob.
type PostgresStateStore struct {
	db *sql.DB
}

// NewPostgresStateStore creates a store over the given database handle.
func NewPostgresStateStore(db *sql.DB) *PostgresStateStore {
	if db == nil {
		panic("dialogue: db handle required")
	}
	return &PostgresStateStore{db: db}
}

// Load reads the user's state row. A missing row, an unknown state tag or
// an undecodable context blob all resolve to the Greeting default so a bad
// row can never strand a conversation.
func (s *PostgresStateStore) Load(ctx context.Context, userID string) (State, BookingDraft, error) {
	var (
		tag  string
		blob []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT state, context FROM dialogue_states WHERE user_id = $1
	`, userID).Scan(&tag, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return StateGreeting, BookingDraft{}, nil
	}
	if err != nil {
		return StateGreeting, BookingDraft{}, fmt.Errorf("dialogue: load state: %w", err)
	}

	draft, err := DecodeDraft(blob)
	if err != nil {
		return StateGreeting, BookingDraft{}, nil
	}
	return ParseState(tag), draft, nil
}

// Save upserts the user's state row.
func (s *PostgresStateStore) Save(ctx context.Context, userID string, state State, draft BookingDraft) error {
	blob, err := draft.Encode()
	if err != nil {
		return fmt.Errorf("dialogue: encode draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dialogue_states (user_id, state, context, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET state = EXCLUDED.state, context = EXCLUDED.context, updated_at = EXCLUDED.updated_at
	`, userID, string(state), blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("dialogue: save state: %w", err)
	}
	return nil
}

var _ StateStore = (*PostgresStateStore)(nil)
