package appointments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the query surface shared by pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool adds transactions on top of Querier. pgxmock satisfies it.
type PgxPool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SlotCalendar re-validates a requested slot inside the commit transaction.
type SlotCalendar interface {
	// CheckAvailable locks the matching slot row and reports whether it is
	// still bookable. q is the transaction the commit runs in.
	CheckAvailable(ctx context.Context, q Querier, dayOfWeek, start, end string) (bool, error)
}

// Repository defines appointment persistence for the booking writer.
type Repository interface {
	Create(ctx context.Context, userID string, req CommitRequest) (*Appointment, error)
	// CreateChecked wraps the availability re-check and the insert in one
	// transaction, returning ErrSlotUnavailable when the slot is taken.
	CreateChecked(ctx context.Context, userID string, req CommitRequest, calendar SlotCalendar) (*Appointment, error)
}

// PostgresRepository stores appointments via pgx.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts one pending appointment row.
func (r *PostgresRepository) Create(ctx context.Context, userID string, req CommitRequest) (*Appointment, error) {
	return insertAppointment(ctx, r.pool, userID, req)
}

// CreateChecked re-validates the slot and inserts within a single
// transaction so two confirmations cannot both win the same slot.
func (r *PostgresRepository) CreateChecked(ctx context.Context, userID string, req CommitRequest, calendar SlotCalendar) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	day, err := dayOfWeek(req.Date)
	if err != nil {
		return nil, err
	}
	available, err := calendar.CheckAvailable(ctx, tx, day, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSlotUnavailable
	}

	appt, err := insertAppointment(ctx, tx, userID, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit tx: %w", err)
	}
	return appt, nil
}

func insertAppointment(ctx context.Context, q Querier, userID string, req CommitRequest) (*Appointment, error) {
	id := uuid.New()
	var createdAt time.Time
	err := q.QueryRow(ctx, `
		INSERT INTO appointments (id, user_id, appointment_date, start_time, end_time, service_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, id, userID, req.Date, req.StartTime, req.EndTime, req.ServiceType, string(StatusPending)).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	return &Appointment{
		ID:          id.String(),
		UserID:      userID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ServiceType: req.ServiceType,
		Status:      StatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

func dayOfWeek(isoDate string) (string, error) {
	parsed, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return "", fmt.Errorf("appointments: bad date %q: %w", isoDate, err)
	}
	// time_slots stores lowercase weekday names.
	switch parsed.Weekday() {
	case time.Monday:
		return "monday", nil
	case time.Tuesday:
		return "tuesday", nil
	case time.Wednesday:
		return "wednesday", nil
	case time.Thursday:
		return "thursday", nil
	case time.Friday:
		return "friday", nil
	case time.Saturday:
		return "saturday", nil
	default:
		return "sunday", nil
	}
}

// InMemoryRepository backs the writer in tests.
type InMemoryRepository struct {
	mu           sync.Mutex
	appointments []Appointment
	calendar     SlotCalendar
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Create appends a pending appointment.
func (r *InMemoryRepository) Create(ctx context.Context, userID string, req CommitRequest) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	appt := Appointment{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ServiceType: req.ServiceType,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.appointments = append(r.appointments, appt)
	copied := appt
	return &copied, nil
}

// CreateChecked consults the calendar (without a real transaction) then
// appends.
func (r *InMemoryRepository) CreateChecked(ctx context.Context, userID string, req CommitRequest, calendar SlotCalendar) (*Appointment, error) {
	day, err := dayOfWeek(req.Date)
	if err != nil {
		return nil, err
	}
	available, err := calendar.CheckAvailable(ctx, nil, day, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSlotUnavailable
	}
	return r.Create(ctx, userID, req)
}

// All returns a snapshot of stored appointments.
func (r *InMemoryRepository) All() []Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out
}

var _ Repository = (*PostgresRepository)(nil)
var _ Repository = (*InMemoryRepository)(nil)
