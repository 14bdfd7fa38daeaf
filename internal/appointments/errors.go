package appointments

import "errors"

var (
	// ErrIncompleteBooking is returned when the writer is handed a draft
	// missing service, date or time.
	ErrIncompleteBooking = errors.New("booking draft is incomplete")

	// ErrSlotUnavailable is returned when availability enforcement is on
	// and the requested slot is no longer free at commit time.
	ErrSlotUnavailable = errors.New("time slot is no longer available")

	// ErrAppointmentNotFound is returned when an appointment is not found
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidStatus is returned for a status outside the enumerated set
	ErrInvalidStatus = errors.New("invalid appointment status")
)
