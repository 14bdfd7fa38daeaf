package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMessenger) SendText(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, body)
	return nil
}

func (m *recordingMessenger) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

type recordingNotifier struct {
	mu      sync.Mutex
	results []*TurnResult
}

func (n *recordingNotifier) NotifyBooking(_ context.Context, result *TurnResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results = append(n.results, result)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWorkerProcessesEnqueuedTurns(t *testing.T) {
	svc, apptRepo, _ := newTestService(t)
	queue := NewMemoryQueue(16)
	messenger := &recordingMessenger{}
	notifier := &recordingNotifier{}

	worker := NewWorker(svc, queue, messenger, logging.Default(),
		WithWorkerCount(1),
		WithReceiveWaitSeconds(1),
		WithBookingNotifier(notifier),
	)
	publisher := NewPublisher(queue, logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	for _, text := range []string{"hi", "Jane Doe", "2", "25/12/2030", "1", "yes"} {
		require.NoError(t, publisher.EnqueueTurn(ctx, InboundTurn{
			From: "+15551234567",
			To:   "+15559990000",
			Text: text,
		}))
	}

	waitFor(t, func() bool { return len(messenger.all()) == 6 })
	waitFor(t, func() bool { return len(apptRepo.All()) == 1 })

	replies := messenger.all()
	assert.Contains(t, replies[0], "Smile Dental")
	assert.Contains(t, replies[5], "Appointment confirmed")

	notifier.mu.Lock()
	require.Len(t, notifier.results, 1)
	assert.NotNil(t, notifier.results[0].Appointment)
	notifier.mu.Unlock()

	cancel()
	worker.Wait()
}

func TestWorkerSendsFallbackOnProcessingFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	queue := NewMemoryQueue(4)
	messenger := &recordingMessenger{}

	worker := NewWorker(svc, queue, messenger, logging.Default(),
		WithWorkerCount(1), WithReceiveWaitSeconds(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	// A turn with no sender fails resolution; the user still gets a reply.
	require.NoError(t, queue.Send(ctx, `{"id":"t1","turn":{"from":"","text":"hi"}}`))

	waitFor(t, func() bool { return len(messenger.all()) == 1 })
	assert.Equal(t, fallbackReply, messenger.all()[0])

	cancel()
	worker.Wait()
}

func TestWorkerDropsUndecodablePayloads(t *testing.T) {
	svc, _, _ := newTestService(t)
	queue := NewMemoryQueue(4)
	messenger := &recordingMessenger{}

	worker := NewWorker(svc, queue, messenger, logging.Default(),
		WithWorkerCount(1), WithReceiveWaitSeconds(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	require.NoError(t, queue.Send(ctx, `not json`))
	require.NoError(t, publisherTurn(ctx, queue, "hi"))

	// The bad payload is skipped and the good one still processes.
	waitFor(t, func() bool { return len(messenger.all()) == 1 })
	assert.Contains(t, messenger.all()[0], "Smile Dental")

	cancel()
	worker.Wait()
}

func publisherTurn(ctx context.Context, queue queueClient, text string) error {
	return NewPublisher(queue, logging.Default()).EnqueueTurn(ctx, InboundTurn{
		From: "+15551234567",
		Text: text,
	})
}

func TestWorkerOptionClamps(t *testing.T) {
	cfg := workerConfig{workers: defaultWorkerCount, receiveWaitSecs: defaultWaitSeconds, receiveBatchSize: defaultBatchSize}
	WithReceiveWaitSeconds(99)(&cfg)
	WithReceiveBatchSize(99)(&cfg)
	WithWorkerCount(-1)(&cfg)

	assert.Equal(t, maxWaitSeconds, cfg.receiveWaitSecs)
	assert.Equal(t, maxBatchSize, cfg.receiveBatchSize)
	assert.Equal(t, defaultWorkerCount, cfg.workers)
}
