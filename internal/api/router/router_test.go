package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-booking-platform/internal/conversation"
	"github.com/wolfman30/dental-booking-platform/internal/messaging"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

type noopPublisher struct{}

func (noopPublisher) EnqueueTurn(context.Context, conversation.InboundTurn) error { return nil }

func testRouter() http.Handler {
	return New(&Config{
		Logger:         logging.Default(),
		WebhookHandler: messaging.NewHandler("verify-me", "", noopPublisher{}, nil, logging.Default()),
	})
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWebhookVerificationRouted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", nil)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
