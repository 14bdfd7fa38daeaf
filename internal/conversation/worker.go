package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/dental-booking-platform/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// ReplyMessenger sends the dialogue's reply back over the channel the turn
// arrived on.
type ReplyMessenger interface {
	SendText(ctx context.Context, to, body string) error
}

// BookingNotifier alerts practice staff when a turn commits a booking.
type BookingNotifier interface {
	NotifyBooking(ctx context.Context, result *TurnResult) error
}

const (
	defaultWorkerCount = 2
	defaultWaitSeconds = 2
	defaultBatchSize   = 5
	maxWaitSeconds     = 20
	maxBatchSize       = 10
	processTimeout     = 30 * time.Second

	fallbackReply = "Sorry, something went wrong on our side. Please try again in a moment."
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	notifier         BookingNotifier
	transcript       *TranscriptStore
	metrics          *metrics.BookingMetrics
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the SQS long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxBatchSize {
			size = maxBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithBookingNotifier wires a notifier that alerts staff on new bookings.
func WithBookingNotifier(notifier BookingNotifier) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.notifier = notifier
	}
}

// WithTranscriptStore wires a Redis-backed transcript store.
func WithTranscriptStore(store *TranscriptStore) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.transcript = store
	}
}

// WithMetrics wires booking metrics.
func WithMetrics(m *metrics.BookingMetrics) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.metrics = m
	}
}

// Worker consumes inbound turns from the queue, runs them through the
// Service and sends the reply.
type Worker struct {
	service    *Service
	queue      queueClient
	messenger  ReplyMessenger
	notifier   BookingNotifier
	transcript *TranscriptStore
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

// NewWorker constructs a queue consumer around the turn processor.
func NewWorker(service *Service, queue queueClient, messenger ReplyMessenger, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if service == nil {
		panic("conversation: service cannot be nil")
	}
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if messenger == nil {
		panic("conversation: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		service:    service,
		queue:      queue,
		messenger:  messenger,
		notifier:   cfg.notifier,
		transcript: cfg.transcript,
		metrics:    cfg.metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("turn worker started", "worker_id", workerID)

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("turn worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive turns", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	var payload turnPayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("failed to decode turn payload", "error", err, "msg_id", msg.ID)
		w.deleteMessage(msg.ReceiptHandle)
		return
	}
	turn := payload.Turn

	w.logger.Info("worker processing turn", "turn_id", payload.ID, "from", turn.From)

	processCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	result, err := w.service.ProcessTurn(processCtx, turn)
	if err != nil {
		w.logger.Error("turn processing failed", "error", err, "turn_id", payload.ID, "from", turn.From)
		w.sendReply(processCtx, turn.From, fallbackReply)
		w.deleteMessage(msg.ReceiptHandle)
		return
	}

	w.appendTranscript(processCtx, result.UserID, TranscriptMessage{
		Role:              "user",
		From:              turn.From,
		To:                turn.To,
		Body:              turn.Text,
		Timestamp:         turn.ReceivedAt,
		ProviderMessageID: turn.ProviderMessageID,
	})

	w.sendReply(processCtx, turn.From, result.Reply)

	w.appendTranscript(processCtx, result.UserID, TranscriptMessage{
		Role: "assistant",
		From: turn.To,
		To:   turn.From,
		Body: result.Reply,
	})

	if result.Appointment != nil && w.notifier != nil {
		if err := w.notifier.NotifyBooking(processCtx, result); err != nil {
			w.logger.Warn("booking notification failed", "error", err, "appointment_id", result.Appointment.ID)
		}
	}

	w.deleteMessage(msg.ReceiptHandle)
}

func (w *Worker) sendReply(ctx context.Context, to, body string) {
	if body == "" {
		return
	}
	if err := w.messenger.SendText(ctx, to, body); err != nil {
		w.logger.Error("failed to send reply", "error", err, "to", to)
		w.metrics.ObserveOutbound("error")
		return
	}
	w.metrics.ObserveOutbound("sent")
}

func (w *Worker) appendTranscript(ctx context.Context, userID string, msg TranscriptMessage) {
	if w.transcript == nil || userID == "" {
		return
	}
	if err := w.transcript.Append(ctx, userID, msg); err != nil {
		w.logger.Warn("failed to append transcript", "error", err, "user_id", userID)
	}
}

// deleteMessage removes a handled message even when the request context is
// gone, so a shutdown mid-turn does not redeliver a turn we already replied
// to.
func (w *Worker) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete queue message", "error", err)
	}
}
