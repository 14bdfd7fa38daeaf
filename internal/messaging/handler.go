package messaging

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dental-booking-platform/internal/conversation"
	"github.com/wolfman30/dental-booking-platform/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

var webhookTracer = otel.Tracer("dentalbot.internal.messaging.webhook")

const maxWebhookBody = 1 << 20

type turnPublisher interface {
	EnqueueTurn(ctx context.Context, turn conversation.InboundTurn) error
}

// Handler handles WhatsApp Cloud API webhook requests.
type Handler struct {
	verifyToken string
	appSecret   string
	publisher   turnPublisher
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
}

// NewHandler creates a webhook handler. metrics may be nil.
func NewHandler(verifyToken, appSecret string, publisher turnPublisher, m *metrics.BookingMetrics, logger *logging.Logger) *Handler {
	if publisher == nil {
		panic("messaging: publisher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// VerifyWebhook handles GET /webhooks/whatsapp, Meta's subscription
// handshake: echo hub.challenge when hub.verify_token matches.
func (h *Handler) VerifyWebhook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		h.logger.Warn("webhook verification rejected", "mode", mode)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	h.logger.Info("webhook verified")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// ReceiveWebhook handles POST /webhooks/whatsapp. It validates the
// signature, extracts text messages and enqueues them for the worker pool.
// The response is always fast; dialogue processing happens off the request
// path.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "messaging.whatsapp.webhook")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	if !ValidateSignature(h.appSecret, r.Header.Get("X-Hub-Signature-256"), body) {
		h.logger.Warn("invalid webhook signature")
		h.metrics.ObserveInbound("message", "bad_signature")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		span.RecordError(errors.New("invalid webhook signature"))
		return
	}

	messages, err := parseWebhook(body)
	if err != nil {
		h.logger.Error("failed to parse webhook", "error", err)
		h.metrics.ObserveInbound("message", "bad_payload")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}
	span.SetAttributes(attribute.Int("dentalbot.webhook.messages", len(messages)))

	if len(messages) == 0 {
		// Delivery receipts and other non-text events are acked silently.
		h.metrics.ObserveInbound("status", "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	for _, msg := range messages {
		turn := conversation.InboundTurn{
			From:              msg.From,
			To:                msg.To,
			Text:              msg.Text,
			ProviderMessageID: msg.ProviderMessageID,
			ReceivedAt:        msg.ReceivedAt,
		}
		if err := h.publisher.EnqueueTurn(publishCtx, turn); err != nil {
			h.logger.Error("failed to enqueue turn", "error", err, "from", msg.From)
			h.metrics.ObserveInbound("message", "enqueue_failed")
			http.Error(w, "Failed to schedule reply", http.StatusInternalServerError)
			span.RecordError(err)
			return
		}
		h.metrics.ObserveInbound("message", "accepted")
	}

	w.WriteHeader(http.StatusOK)
}
