package events

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NatsSubscriber feeds message events from NATS into the local hub so that
// every instance's live sessions see sends from every other instance.
type NatsSubscriber struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

func NewNatsSubscriber(natsURL string, hub *Hub) (*NatsSubscriber, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}

	sub, err := nc.Subscribe("message.>", func(msg *nats.Msg) {
		var ev MessageEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Error("failed to decode message event", "subject", msg.Subject, "error", err)
			return
		}
		hub.Dispatch(ev)
	})
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &NatsSubscriber{conn: nc, sub: sub}, nil
}

func (s *NatsSubscriber) Close() {
	_ = s.sub.Unsubscribe()
	s.conn.Close()
}
