package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dental-booking-platform/internal/appointments"
	"github.com/wolfman30/dental-booking-platform/internal/dialogue"
	"github.com/wolfman30/dental-booking-platform/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-platform/internal/users"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

var serviceTracer = otel.Tracer("dentalbot.internal.conversation")

// TurnResult is what one processed turn produces: the reply to send back
// and, when the turn confirmed a booking, the committed appointment.
type TurnResult struct {
	UserID      string
	UserPhone   string
	Reply       string
	Appointment *appointments.Appointment
}

// Service orchestrates one dialogue turn: resolve the sender to a user,
// load state, run the engine, persist the outcome. Turns for the same
// sender are serialized with a per-sender lock so rapid consecutive
// messages cannot interleave state reads and writes.
type Service struct {
	users   users.Repository
	states  dialogue.StateStore
	engine  *dialogue.Engine
	metrics *metrics.BookingMetrics
	logger  *logging.Logger

	mu    sync.Mutex
	locks map[string]*senderLock
}

type senderLock struct {
	mu   sync.Mutex
	refs int
}

// NewService constructs the turn processor. metrics may be nil.
func NewService(userRepo users.Repository, states dialogue.StateStore, engine *dialogue.Engine, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if userRepo == nil {
		panic("conversation: user repository cannot be nil")
	}
	if states == nil {
		panic("conversation: state store cannot be nil")
	}
	if engine == nil {
		panic("conversation: engine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		users:   userRepo,
		states:  states,
		engine:  engine,
		metrics: m,
		logger:  logger,
		locks:   make(map[string]*senderLock),
	}
}

// ProcessTurn runs one inbound message through the dialogue and returns the
// reply. State is only saved after the engine succeeds, so a failed turn
// leaves the conversation where it was and the user can simply resend.
func (s *Service) ProcessTurn(ctx context.Context, turn InboundTurn) (*TurnResult, error) {
	started := time.Now()
	ctx, span := serviceTracer.Start(ctx, "conversation.process_turn")
	defer span.End()

	phone := strings.TrimSpace(turn.From)
	if phone == "" {
		return nil, fmt.Errorf("conversation: %w", users.ErrMissingPhone)
	}

	unlock := s.lockSender(phone)
	defer unlock()

	user, err := s.users.GetOrCreateByPhone(ctx, phone)
	if err != nil {
		s.metrics.ObserveTurn("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("conversation: resolve sender: %w", err)
	}
	span.SetAttributes(attribute.String("dentalbot.user_id", user.ID))

	state, draft, err := s.states.Load(ctx, user.ID)
	if err != nil {
		s.metrics.ObserveTurn("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("conversation: load state: %w", err)
	}

	res, err := s.engine.Step(ctx, user.ID, state, draft, turn.Text)
	if err != nil {
		s.metrics.ObserveTurn("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("conversation: dialogue step: %w", err)
	}

	if err := s.states.Save(ctx, user.ID, res.State, res.Draft); err != nil {
		s.metrics.ObserveTurn("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("conversation: save state: %w", err)
	}

	if res.Appointment != nil {
		s.metrics.ObserveBooking("committed")
	}
	s.metrics.ObserveTurn("ok", time.Since(started).Seconds())

	s.logger.Info("turn processed",
		"user_id", user.ID,
		"from_state", string(state),
		"to_state", string(res.State),
		"booked", res.Appointment != nil,
	)

	return &TurnResult{
		UserID:      user.ID,
		UserPhone:   user.Phone,
		Reply:       res.Reply,
		Appointment: res.Appointment,
	}, nil
}

// lockSender serializes turns per sender. Locks are reference counted and
// removed from the map once the last holder releases, so the map does not
// grow with every phone number ever seen.
func (s *Service) lockSender(phone string) func() {
	s.mu.Lock()
	lock, ok := s.locks[phone]
	if !ok {
		lock = &senderLock{}
		s.locks[phone] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, phone)
		}
		s.mu.Unlock()
	}
}
