package availability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/dental-booking-platform/internal/appointments"
)

// PostgresCalendar answers availability questions against the time_slots
// table. CheckAvailable locks the slot row so a concurrent confirmation for
// the same slot blocks until the first transaction settles.
type PostgresCalendar struct{}

// NewPostgresCalendar returns a calendar over time_slots.
func NewPostgresCalendar() *PostgresCalendar {
	return &PostgresCalendar{}
}

// CheckAvailable reports whether the slot exists and is bookable. A slot
// with no configured row is treated as available, matching the behavior
// when enforcement is disabled.
func (c *PostgresCalendar) CheckAvailable(ctx context.Context, q appointments.Querier, dayOfWeek, start, end string) (bool, error) {
	var available bool
	err := q.QueryRow(ctx, `
		SELECT is_available FROM time_slots
		WHERE day_of_week = $1 AND start_time = $2 AND end_time = $3
		FOR UPDATE
	`, dayOfWeek, start, end).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("availability: slot lookup failed: %w", err)
	}
	return available, nil
}

// MemoryCalendar is an in-memory SlotCalendar for tests. Slots default to
// available; mark specific ones taken with SetUnavailable.
type MemoryCalendar struct {
	mu    sync.RWMutex
	taken map[string]bool
}

// NewMemoryCalendar creates an empty calendar.
func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{taken: make(map[string]bool)}
}

// SetUnavailable marks a slot as booked out.
func (c *MemoryCalendar) SetUnavailable(dayOfWeek, start, end string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taken[slotKey(dayOfWeek, start, end)] = true
}

// CheckAvailable reports whether the slot is still open.
func (c *MemoryCalendar) CheckAvailable(ctx context.Context, _ appointments.Querier, dayOfWeek, start, end string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.taken[slotKey(dayOfWeek, start, end)], nil
}

func slotKey(day, start, end string) string {
	return day + "|" + start + "|" + end
}

var _ appointments.SlotCalendar = (*PostgresCalendar)(nil)
var _ appointments.SlotCalendar = (*MemoryCalendar)(nil)
