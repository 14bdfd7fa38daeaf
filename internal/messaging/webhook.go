package messaging

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// whatsappWebhook is the Cloud API webhook envelope. Only the fields the
// bot consumes are mapped; everything else is ignored.
type whatsappWebhook struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Metadata         struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
					PhoneNumberID      string `json:"phone_number_id"`
				} `json:"metadata"`
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      struct {
						Body string `json:"body"`
					} `json:"text"`
					Button struct {
						Text string `json:"text"`
					} `json:"button"`
				} `json:"messages"`
				Statuses []json.RawMessage `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// InboundMessage is one text message extracted from a webhook delivery.
type InboundMessage struct {
	From              string
	To                string // practice display number
	Text              string
	ProviderMessageID string
	ReceivedAt        time.Time
}

// parseWebhook extracts text messages from a raw webhook body. Status-only
// deliveries (sent/read receipts) yield an empty slice, not an error.
func parseWebhook(body []byte) ([]InboundMessage, error) {
	var payload whatsappWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("messaging: decode webhook: %w", err)
	}
	if payload.Object != "whatsapp_business_account" {
		return nil, fmt.Errorf("messaging: unexpected webhook object %q", payload.Object)
	}

	var out []InboundMessage
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			to := NormalizeE164(change.Value.Metadata.DisplayPhoneNumber)
			for _, msg := range change.Value.Messages {
				text := msg.Text.Body
				if msg.Type == "button" {
					text = msg.Button.Text
				}
				if strings.TrimSpace(text) == "" {
					continue
				}
				out = append(out, InboundMessage{
					From:              NormalizeE164(msg.From),
					To:                to,
					Text:              text,
					ProviderMessageID: msg.ID,
					ReceivedAt:        parseUnixSeconds(msg.Timestamp),
				})
			}
		}
	}
	return out, nil
}

func parseUnixSeconds(value string) time.Time {
	secs, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}

// ValidateSignature checks the X-Hub-Signature-256 header against the raw
// body using the app secret. An empty secret disables validation.
func ValidateSignature(appSecret string, header string, body []byte) bool {
	if appSecret == "" {
		return true
	}
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(header, prefix)))
}
