package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// InboundTurn is one user message as received from the messaging channel.
type InboundTurn struct {
	From              string    `json:"from"` // sender phone, E.164
	To                string    `json:"to"`   // practice phone
	Text              string    `json:"text"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	ReceivedAt        time.Time `json:"received_at"`
}

type turnPayload struct {
	ID   string      `json:"id"`
	Turn InboundTurn `json:"turn"`
}

func encodeTurn(turn InboundTurn) (turnPayload, string, error) {
	payload := turnPayload{ID: uuid.NewString(), Turn: turn}
	body, err := json.Marshal(payload)
	if err != nil {
		return turnPayload{}, "", fmt.Errorf("conversation: encode turn payload: %w", err)
	}
	return payload, string(body), nil
}
