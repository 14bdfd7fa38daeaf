package appointments

import "time"

// Status enumerates the appointment lifecycle. The booking writer only ever
// creates StatusPending rows; the rest are set by administrative actions.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the four enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Appointment is a finalized booking row.
type Appointment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"appointment_date"` // ISO 8601, YYYY-MM-DD
	StartTime   string    `json:"start_time"`       // HH:MM
	EndTime     string    `json:"end_time"`         // HH:MM
	ServiceType string    `json:"service_type"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CommitRequest carries a completed booking draft into the writer.
type CommitRequest struct {
	ServiceType string
	Date        string // ISO 8601, YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
}
