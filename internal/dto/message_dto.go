package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/inflowhq/inflow-backend/internal/models"
)

type SendMessageRequest struct {
	RecipientID   uuid.UUID  `json:"recipientId" validate:"required"`
	Content       string     `json:"content"`
	DealID        *uuid.UUID `json:"dealId"`
	AttachmentURL string     `json:"attachmentUrl"`
}

type SendMessageResponse struct {
	MessageID      uuid.UUID `json:"messageId"`
	ConversationID uuid.UUID `json:"conversationId"`
}

// ContactResponse is one entry of the contact list, joined with the
// counterparty's display fields.
type ContactResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Avatar          string          `json:"avatar"`
	Role            models.UserRole `json:"role"`
	LastMessage     string          `json:"lastMessage"`
	LastMessageTime time.Time       `json:"lastMessageTime"`
	Unread          int             `json:"unread"`
}
