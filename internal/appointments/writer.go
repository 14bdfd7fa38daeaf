package appointments

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

var writerTracer = otel.Tracer("dentalbot.internal.appointments")

// Writer validates and persists finalized bookings.
type Writer struct {
	repo     Repository
	calendar SlotCalendar // nil disables availability enforcement
	logger   *logging.Logger
}

// NewWriter constructs a booking writer. Pass a nil calendar to skip
// availability re-checks at commit time.
func NewWriter(repo Repository, calendar SlotCalendar, logger *logging.Logger) *Writer {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{repo: repo, calendar: calendar, logger: logger}
}

// Commit persists one pending appointment for the user. It fails with
// ErrIncompleteBooking when the request is missing a field and with
// ErrSlotUnavailable when enforcement is on and the slot was taken.
func (w *Writer) Commit(ctx context.Context, userID string, req CommitRequest) (*Appointment, error) {
	ctx, span := writerTracer.Start(ctx, "appointments.commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("dentalbot.user_id", userID),
		attribute.String("dentalbot.service", req.ServiceType),
		attribute.String("dentalbot.date", req.Date),
	)

	if req.ServiceType == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		span.RecordError(ErrIncompleteBooking)
		return nil, ErrIncompleteBooking
	}

	var (
		appt *Appointment
		err  error
	)
	if w.calendar != nil {
		appt, err = w.repo.CreateChecked(ctx, userID, req, w.calendar)
	} else {
		appt, err = w.repo.Create(ctx, userID, req)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	w.logger.Info("appointment committed",
		"appointment_id", appt.ID,
		"user_id", userID,
		"service", appt.ServiceType,
		"date", appt.Date,
		"slot", appt.StartTime+"-"+appt.EndTime,
	)
	return appt, nil
}
