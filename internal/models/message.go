package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageStatus string

// Message delivery progresses sent -> delivered -> read and never moves
// backwards. There is no failed or deleted state.
const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// Conversation is the channel between two users. ParticipantKey is the
// sorted pair of user ids joined with ':' so the same two users always
// resolve to the same conversation regardless of who initiates.
type Conversation struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantKey     string     `gorm:"size:80;not null;uniqueIndex" json:"-"`
	ParticipantAID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"participant_a_id"`
	ParticipantBID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"participant_b_id"`
	DealID             *uuid.UUID `gorm:"type:uuid" json:"deal_id"`
	LastMessagePreview string     `gorm:"size:100" json:"last_message_preview"`
	LastMessageAt      time.Time  `json:"last_message_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ParticipantKeyFor returns the canonical conversation key for a user pair.
func ParticipantKeyFor(a, b uuid.UUID) string {
	if a.String() < b.String() {
		return a.String() + ":" + b.String()
	}
	return b.String() + ":" + a.String()
}

// Message ordering within a conversation is by server-assigned CreatedAt;
// ties between concurrent sends are left unresolved.
type Message struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Content        string        `gorm:"type:text;not null" json:"content"`
	Status         MessageStatus `gorm:"size:10;not null;default:'sent';index" json:"status"`
	DealID         *uuid.UUID    `gorm:"type:uuid" json:"deal_id"`
	AttachmentURL  string        `gorm:"size:512" json:"attachment_url"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Contact is the per-(user, counterparty) conversation summary used to
// render a contact list without scanning message history. Both sides get a
// row on the first message between two users.
type Contact struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_contacts_user_contact" json:"user_id"`
	ContactID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_contacts_user_contact" json:"contact_id"`
	UnreadCount        int        `gorm:"default:0" json:"unread_count"`
	LastMessageID      *uuid.UUID `gorm:"type:uuid" json:"last_message_id"`
	LastMessagePreview string     `gorm:"size:100" json:"last_message_preview"`
	LastMessageAt      time.Time  `gorm:"index" json:"last_message_at"`
	LastReadAt         *time.Time `json:"last_read_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
