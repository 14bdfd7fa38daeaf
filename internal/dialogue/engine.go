package dialogue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/dental-booking-platform/internal/appointments"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// BookingWriter commits a completed draft. Implemented by
// appointments.Writer.
type BookingWriter interface {
	Commit(ctx context.Context, userID string, req appointments.CommitRequest) (*appointments.Appointment, error)
}

// NameUpdater persists the collected display name onto the user record.
type NameUpdater interface {
	UpdateName(ctx context.Context, id, name string) error
}

// Result is the outcome of one turn: the state and draft to persist, the
// reply to send, and the appointment when the turn committed one.
type Result struct {
	State       State
	Draft       BookingDraft
	Reply       string
	Appointment *appointments.Appointment
}

// Engine is the booking dialogue state machine. Step is the only entry
// point; it never advances state when an error leaves required context
// incomplete, so callers must skip the state save on a returned error.
type Engine struct {
	writer  BookingWriter
	names   NameUpdater
	replies Replies
	now     func() time.Time
	logger  *logging.Logger
}

// NewEngine constructs the state machine.
func NewEngine(writer BookingWriter, names NameUpdater, replies Replies, logger *logging.Logger) *Engine {
	if writer == nil {
		panic("dialogue: booking writer required")
	}
	if names == nil {
		panic("dialogue: name updater required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		writer:  writer,
		names:   names,
		replies: replies,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

// WithClock overrides the engine's notion of "now" for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Step computes the transition for one user turn.
func (e *Engine) Step(ctx context.Context, userID string, state State, draft BookingDraft, text string) (Result, error) {
	now := e.now()
	intent := Classify(state, text, now)

	switch state {
	case StateGreeting:
		return Result{State: StateCollectingName, Reply: e.replies.Welcome()}, nil

	case StateCollectingName:
		if intent.Kind == IntentInvalid {
			return Result{State: state, Reply: e.replies.NamePrompt()}, nil
		}
		if err := e.names.UpdateName(ctx, userID, intent.Value); err != nil {
			return Result{}, err
		}
		return Result{State: StateCollectingService, Reply: e.replies.ServiceMenu(intent.Value)}, nil

	case StateCollectingService:
		if intent.Kind == IntentInvalid {
			return Result{State: state, Reply: e.replies.ServiceReprompt()}, nil
		}
		draft.Service = intent.Value
		return Result{State: StateCollectingDate, Draft: draft, Reply: e.replies.DatePrompt(draft.Service)}, nil

	case StateCollectingDate:
		if intent.Kind == IntentInvalid {
			reply := e.replies.InvalidDate()
			if intent.Reason == reasonPastDate {
				reply = e.replies.PastDate(now)
			}
			return Result{State: state, Draft: draft, Reply: reply}, nil
		}
		draft.Date = intent.Value
		return Result{State: StateCollectingTime, Draft: draft, Reply: e.replies.TimeMenu(draft.Date)}, nil

	case StateCollectingTime:
		if intent.Kind == IntentInvalid {
			return Result{State: state, Draft: draft, Reply: e.replies.InvalidSlot()}, nil
		}
		draft.Time = intent.Value
		return Result{State: StateConfirmingBooking, Draft: draft, Reply: e.replies.Summary(draft)}, nil

	case StateConfirmingBooking:
		if intent.Kind != IntentConfirm {
			return Result{State: StateGreeting, Reply: e.replies.Declined()}, nil
		}
		return e.commit(ctx, userID, draft)

	default:
		return Result{State: StateCollectingName, Reply: e.replies.Welcome()}, nil
	}
}

func (e *Engine) commit(ctx context.Context, userID string, draft BookingDraft) (Result, error) {
	start, end := splitSlot(draft.Time)
	appt, err := e.writer.Commit(ctx, userID, appointments.CommitRequest{
		ServiceType: draft.Service,
		Date:        draft.Date,
		StartTime:   start,
		EndTime:     end,
	})
	switch {
	case errors.Is(err, appointments.ErrIncompleteBooking):
		e.logger.Error("confirmation reached with incomplete draft", "user_id", userID, "draft", draft)
		return Result{State: StateGreeting, Reply: e.replies.Restart()}, nil
	case errors.Is(err, appointments.ErrSlotUnavailable):
		draft.Time = ""
		return Result{State: StateCollectingTime, Draft: draft, Reply: e.replies.SlotTaken()}, nil
	case err != nil:
		return Result{}, err
	}

	return Result{
		State:       StateGreeting,
		Reply:       e.replies.Confirmed(draft),
		Appointment: appt,
	}, nil
}

// splitSlot turns a stored "HH:MM-HH:MM" value into start and end. Slot
// values produced by the classifier always match a menu entry; the manual
// split covers drafts written by older deployments.
func splitSlot(value string) (string, string) {
	if slot, ok := SlotByValue(value); ok {
		return slot.Start, slot.End
	}
	parts := strings.SplitN(value, "-", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return value, value
}
