package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const sessionBuffer = 16

// DeliveryMarker persists the sent -> delivered transition once a live
// subscriber session has received the message.
type DeliveryMarker interface {
	MarkDelivered(messageID uuid.UUID) error
}

// Hub tracks live subscriber sessions per user and fans message events out
// to them. Delivery is detected here: when a sent event reaches a hub with
// an active session for the recipient, the message is marked delivered.
// There is no explicit acknowledgment call from the client.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Session]struct{}
	marker   DeliveryMarker
}

// Session is one live subscription for one user. Events arrive on a
// buffered channel; a slow consumer drops events rather than blocking the
// dispatcher.
type Session struct {
	UserID uuid.UUID
	ch     chan MessageEvent
	hub    *Hub
	once   sync.Once
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[uuid.UUID]map[*Session]struct{})}
}

// SetDeliveryMarker wires the persistence side of the sent -> delivered
// transition. Set once at startup.
func (h *Hub) SetDeliveryMarker(m DeliveryMarker) {
	h.marker = m
}

func (h *Hub) Subscribe(userID uuid.UUID) *Session {
	s := &Session{
		UserID: userID,
		ch:     make(chan MessageEvent, sessionBuffer),
		hub:    h,
	}

	h.mu.Lock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*Session]struct{})
	}
	h.sessions[userID][s] = struct{}{}
	h.mu.Unlock()

	return s
}

func (s *Session) Events() <-chan MessageEvent {
	return s.ch
}

// Close removes the session and closes its channel under the hub lock, so
// it can never race a Dispatch sending on the channel.
func (s *Session) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if set := s.hub.sessions[s.UserID]; set != nil {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.sessions, s.UserID)
			}
		}
		close(s.ch)
		s.hub.mu.Unlock()
	})
}

// Publish lets the Hub serve as the Publisher in single-instance
// deployments with no NATS configured.
func (h *Hub) Publish(ev MessageEvent) error {
	h.Dispatch(ev)
	return nil
}

// Dispatch delivers an event to all live sessions of both participants and
// triggers the delivery transition for freshly sent messages. Channel sends
// stay under the read lock: sends never block (slow consumers drop the
// event) and Close needs the write lock before it may close a channel.
func (h *Hub) Dispatch(ev MessageEvent) {
	h.mu.RLock()
	recipientActive := len(h.sessions[ev.ReceiverID]) > 0
	for s := range h.sessions[ev.ReceiverID] {
		s.deliver(ev)
	}
	if ev.SenderID != ev.ReceiverID {
		for s := range h.sessions[ev.SenderID] {
			s.deliver(ev)
		}
	}
	h.mu.RUnlock()

	if ev.EventType == EventMessageSent && recipientActive && h.marker != nil {
		if err := h.marker.MarkDelivered(ev.MessageID); err != nil {
			slog.Error("failed to mark message delivered", "message_id", ev.MessageID, "error", err)
		}
	}
}

func (s *Session) deliver(ev MessageEvent) {
	select {
	case s.ch <- ev:
	default:
		slog.Warn("dropping message event for slow subscriber", "user_id", s.UserID, "event", ev.EventType)
	}
}
