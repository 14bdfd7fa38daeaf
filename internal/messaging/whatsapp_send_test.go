package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

func TestWhatsAppSenderSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.out"}]}`))
	}))
	defer server.Close()

	sender := NewWhatsAppSender("token-123", "12345", server.URL, time.Second, logging.Default())
	err := sender.SendText(context.Background(), "+15551234567", "Welcome!")
	require.NoError(t, err)

	assert.Equal(t, "/12345/messages", gotPath)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
	assert.Equal(t, "15551234567", gotBody["to"])
	text := gotBody["text"].(map[string]any)
	assert.Equal(t, "Welcome!", text["body"])
}

func TestWhatsAppSenderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWhatsAppSender("token", "12345", server.URL, time.Second, logging.Default())
	err := sender.SendText(context.Background(), "+15551234567", "hi")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWhatsAppSenderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewWhatsAppSender("bad-token", "12345", server.URL, time.Second, logging.Default())
	err := sender.SendText(context.Background(), "+15551234567", "hi")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWhatsAppSenderValidatesInput(t *testing.T) {
	sender := NewWhatsAppSender("token", "12345", "https://example.invalid", time.Second, logging.Default())

	assert.Error(t, sender.SendText(context.Background(), "", "hi"))
	assert.Error(t, sender.SendText(context.Background(), "+15551234567", "  "))

	missingToken := NewWhatsAppSender("", "12345", "https://example.invalid", time.Second, logging.Default())
	assert.Error(t, missingToken.SendText(context.Background(), "+15551234567", "hi"))
}
