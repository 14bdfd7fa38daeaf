package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dental-booking-platform/internal/conversation"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

var sendTracer = otel.Tracer("dentalbot.internal.messaging.whatsapp_send")

// WhatsAppSender posts text messages through the WhatsApp Cloud API.
type WhatsAppSender struct {
	token         string
	phoneNumberID string
	apiBaseURL    string
	httpClient    *http.Client
	logger        *logging.Logger
}

// NewWhatsAppSender builds a sender for the Cloud API. apiBaseURL is the
// Graph API root, e.g. "https://graph.facebook.com/v17.0".
func NewWhatsAppSender(token, phoneNumberID, apiBaseURL string, timeout time.Duration, logger *logging.Logger) *WhatsAppSender {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WhatsAppSender{
		token:         token,
		phoneNumberID: phoneNumberID,
		apiBaseURL:    strings.TrimRight(apiBaseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

var _ conversation.ReplyMessenger = (*WhatsAppSender)(nil)

// SendText dispatches a single text message, retrying transient failures.
func (s *WhatsAppSender) SendText(ctx context.Context, to, body string) error {
	if s.token == "" {
		return errors.New("messaging: whatsapp token missing")
	}
	if s.phoneNumberID == "" {
		return errors.New("messaging: whatsapp phone number id missing")
	}
	to = NormalizeE164(to)
	if to == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := sendTracer.Start(ctx, "messaging.whatsapp.send")
	defer span.End()
	span.SetAttributes(attribute.String("dentalbot.to", to))

	payload, err := json.Marshal(map[string]any{
		"messaging_product": "whatsapp",
		"to":                strings.TrimPrefix(to, "+"),
		"type":              "text",
		"text":              map[string]string{"body": body},
	})
	if err != nil {
		return fmt.Errorf("messaging: marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.apiBaseURL, s.phoneNumberID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.logger.Info("whatsapp message sent", "to", to)
				return nil
			}
			lastErr = fmt.Errorf("whatsapp send failed: status %d, body: %s", resp.StatusCode, string(respBody))
			// 4xx responses will not succeed on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				break
			}
		}

		if attempt < 3 {
			time.Sleep(time.Duration(200+rand.Intn(300)) * time.Millisecond)
		}
	}

	span.RecordError(lastErr)
	s.logger.Error("failed to send whatsapp message", "error", lastErr, "to", to)
	return lastErr
}
