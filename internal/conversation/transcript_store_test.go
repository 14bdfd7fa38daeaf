package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranscriptStore(t *testing.T) *TranscriptStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTranscriptStore(client)
}

func TestTranscriptStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestTranscriptStore(t)

	require.NoError(t, store.Append(ctx, "user-1", TranscriptMessage{
		Role: "user", From: "+1555", To: "+1999", Body: "hi",
	}))
	require.NoError(t, store.Append(ctx, "user-1", TranscriptMessage{
		Role: "assistant", From: "+1999", To: "+1555", Body: "Welcome!",
	}))

	messages, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "hi", messages[0].Body)
	assert.Equal(t, "Welcome!", messages[1].Body)
	assert.NotEmpty(t, messages[0].ID)
	assert.False(t, messages[0].Timestamp.IsZero())
}

func TestTranscriptStoreListLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestTranscriptStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "user-1", TranscriptMessage{
			Role: "user", Body: time.Now().String(),
		}))
	}

	messages, err := store.List(ctx, "user-1", 2)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestTranscriptStoreTrimsToMaxMessages(t *testing.T) {
	ctx := context.Background()
	store := newTestTranscriptStore(t)
	store.maxMessages = 3

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(ctx, "user-1", TranscriptMessage{Role: "user", Body: "m"}))
	}

	messages, err := store.List(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestTranscriptStoreNilSafe(t *testing.T) {
	var store *TranscriptStore
	require.NoError(t, store.Append(context.Background(), "user-1", TranscriptMessage{}))
	messages, err := store.List(context.Background(), "user-1", 0)
	require.NoError(t, err)
	assert.Nil(t, messages)
}

func TestTranscriptStoreRequiresUserID(t *testing.T) {
	store := newTestTranscriptStore(t)
	assert.Error(t, store.Append(context.Background(), "", TranscriptMessage{Body: "hi"}))
	_, err := store.List(context.Background(), "", 0)
	assert.Error(t, err)
}
