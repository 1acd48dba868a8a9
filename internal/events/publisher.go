package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/inflowhq/inflow-backend/internal/models"
)

const (
	EventMessageSent      = "message.sent"
	EventMessageDelivered = "message.delivered"
	EventMessageRead      = "message.read"
)

// MessageEvent is the change notification emitted whenever a message is
// written or transitions delivery state. Subscribers maintain their
// contact-list and conversation projections from these events alone.
type MessageEvent struct {
	EventType      string               `json:"event_type"`
	MessageID      uuid.UUID            `json:"message_id"`
	ConversationID uuid.UUID            `json:"conversation_id"`
	SenderID       uuid.UUID            `json:"sender_id"`
	ReceiverID     uuid.UUID            `json:"receiver_id"`
	Preview        string               `json:"preview"`
	Status         models.MessageStatus `json:"status"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

// Publisher emits message change events. The in-process Hub satisfies this
// directly; NatsPublisher fans out across instances.
type Publisher interface {
	Publish(ev MessageEvent) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) Publish(ev MessageEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(ev.EventType, payload); err != nil {
		slog.Error("failed to publish message event", "subject", ev.EventType, "error", err)
		return err
	}
	return nil
}

func (p *NatsPublisher) Close() {
	p.conn.Close()
}
