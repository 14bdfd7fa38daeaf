package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix = "chat_transcript:"
	transcriptTTL       = 30 * 24 * time.Hour
)

// TranscriptMessage is one entry in a user's chat transcript.
type TranscriptMessage struct {
	ID                string    `json:"id"`
	Role              string    `json:"role"` // "user" or "assistant"
	From              string    `json:"from"`
	To                string    `json:"to"`
	Body              string    `json:"body"`
	Timestamp         time.Time `json:"timestamp"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
}

// TranscriptStore keeps a rolling per-user transcript in Redis so the admin
// portal can show recent conversations. All methods are nil-receiver safe;
// running without Redis just disables transcripts.
type TranscriptStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	maxMessages int64
}

func NewTranscriptStore(redisClient *redis.Client) *TranscriptStore {
	if redisClient == nil {
		return nil
	}
	return &TranscriptStore{
		redis:       redisClient,
		tracer:      otel.Tracer("dentalbot.internal.conversation.transcript"),
		maxMessages: 250,
	}
}

// Append pushes one message onto the transcript, trimming to the newest
// maxMessages and refreshing the TTL.
func (s *TranscriptStore) Append(ctx context.Context, userID string, msg TranscriptMessage) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if userID == "" {
		return errors.New("conversation: transcript userID required")
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("conversation: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "conversation.transcript.append")
	defer span.End()

	key := transcriptKey(userID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, transcriptTTL)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append transcript message: %w", err)
	}
	return nil
}

// List returns the newest limit messages, oldest first. limit <= 0 returns
// the whole transcript.
func (s *TranscriptStore) List(ctx context.Context, userID string, limit int64) ([]TranscriptMessage, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if userID == "" {
		return nil, errors.New("conversation: transcript userID required")
	}

	ctx, span := s.tracer.Start(ctx, "conversation.transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := s.redis.LRange(ctx, transcriptKey(userID), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, redis.Nil) {
			return []TranscriptMessage{}, nil
		}
		return nil, fmt.Errorf("conversation: list transcript: %w", err)
	}

	out := make([]TranscriptMessage, 0, len(raw))
	for _, item := range raw {
		var msg TranscriptMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(userID string) string {
	return transcriptKeyPrefix + userID
}
