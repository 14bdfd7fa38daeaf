package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/dental-booking-platform/internal/conversation"
	"github.com/wolfman30/dental-booking-platform/internal/users"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// UserLookup resolves the booking user for richer notification copy.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// Service emails practice staff when the bot commits a new booking.
type Service struct {
	email        EmailSender
	users        UserLookup
	recipient    string
	practiceName string
	logger       *logging.Logger
}

// NewService creates a notification service. A nil email sender or empty
// recipient disables notifications.
func NewService(email EmailSender, userLookup UserLookup, recipient, practiceName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if practiceName == "" {
		practiceName = "Dental Care Bot"
	}
	return &Service{
		email:        email,
		users:        userLookup,
		recipient:    recipient,
		practiceName: practiceName,
		logger:       logger,
	}
}

var _ conversation.BookingNotifier = (*Service)(nil)

// NotifyBooking emails the practice inbox about a freshly committed
// appointment. Missing configuration is not an error; the booking already
// happened and the dialogue must not fail because staff email is down.
func (s *Service) NotifyBooking(ctx context.Context, result *conversation.TurnResult) error {
	if s.email == nil || s.recipient == "" {
		s.logger.Debug("booking notifications disabled")
		return nil
	}
	if result == nil || result.Appointment == nil {
		return nil
	}
	appt := result.Appointment

	patientName := "A patient"
	patientPhone := result.UserPhone
	if s.users != nil {
		if user, err := s.users.GetByID(ctx, result.UserID); err == nil {
			patientName = user.DisplayName()
			if user.Phone != "" {
				patientPhone = user.Phone
			}
		}
	}

	date := appt.Date
	if parsed, err := time.Parse("2006-01-02", appt.Date); err == nil {
		date = parsed.Format("Monday, January 2, 2006")
	}

	subject := fmt.Sprintf("New Appointment - %s", patientName)
	body := fmt.Sprintf(`%s booked an appointment via WhatsApp.

Patient: %s
Phone: %s
Service: %s
Date: %s
Time: %s - %s
Status: %s

Please confirm the appointment in the admin portal.

%s`, patientName, patientName, patientPhone, appt.ServiceType, date, appt.StartTime, appt.EndTime, appt.Status, s.practiceName)

	msg := EmailMessage{
		To:      s.recipient,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("booking notification email failed", "error", err, "appointment_id", appt.ID)
		return fmt.Errorf("notify: booking email: %w", err)
	}

	s.logger.Info("booking notification sent", "appointment_id", appt.ID, "to", s.recipient)
	return nil
}
