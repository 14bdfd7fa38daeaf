package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue is a queueClient backed by a buffered channel. It stands in
// for SQS in local development and tests.
type MemoryQueue struct {
	ch chan queueMessage
}

// NewMemoryQueue creates a MemoryQueue with the provided buffer capacity.
func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryQueue{ch: make(chan queueMessage, buffer)}
}

// Send enqueues a payload or blocks until ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	msg := queueMessage{
		ID:            uuid.NewString(),
		Body:          body,
		ReceiptHandle: uuid.NewString(),
	}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message arrives, waitSeconds elapses, or ctx is
// done. It drains up to maxMessages without blocking once the first one
// arrives.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if maxMessages <= 0 {
		maxMessages = 1
	}

	var wait <-chan time.Time
	if waitSeconds > 0 {
		timer := time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
		wait = timer.C
	}

	var first queueMessage
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-wait:
		return nil, nil
	case first = <-q.ch:
	}

	messages := append(make([]queueMessage, 0, maxMessages), first)
	for len(messages) < maxMessages {
		select {
		case msg := <-q.ch:
			messages = append(messages, msg)
		default:
			return messages, nil
		}
	}
	return messages, nil
}

// Delete is a no-op for the in-memory queue.
func (q *MemoryQueue) Delete(context.Context, string) error {
	return nil
}
