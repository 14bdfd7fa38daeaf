package conversation

import (
	"context"
	"fmt"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

// Publisher enqueues inbound turns for asynchronous processing. The webhook
// handler uses it so the HTTP response never waits on dialogue processing.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// EnqueueTurn publishes one inbound message for the worker pool.
func (p *Publisher) EnqueueTurn(ctx context.Context, turn InboundTurn) error {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, body, err := encodeTurn(turn)
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("conversation: enqueue turn: %w", err)
	}

	p.logger.Debug("turn enqueued", "turn_id", payload.ID, "from", turn.From)
	return nil
}
