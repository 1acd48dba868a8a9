package services

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/events"
	"github.com/inflowhq/inflow-backend/internal/models"
)

var (
	ErrEmptyMessage      = errors.New("message needs content or an attachment")
	ErrSelfMessage       = errors.New("cannot message yourself")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrMessageNotFound   = errors.New("message not found")
)

const previewLen = 100

// MessageService owns the sent -> delivered -> read state machine and the
// per-user contact summaries. The relational rows are the source of truth;
// the event publisher only notifies live subscribers of changes.
type MessageService struct {
	db        *gorm.DB
	publisher events.Publisher
}

func NewMessageService(db *gorm.DB, publisher events.Publisher) *MessageService {
	return &MessageService{db: db, publisher: publisher}
}

// Send writes the message in state sent, refreshes the conversation
// summary and both contact rows (recipient unread +1, sender untouched) in
// one transaction, then publishes the change event best-effort.
func (s *MessageService) Send(senderID uuid.UUID, req *dto.SendMessageRequest) (*models.Message, error) {
	if req.Content == "" && req.AttachmentURL == "" {
		return nil, ErrEmptyMessage
	}
	if req.RecipientID == senderID {
		return nil, ErrSelfMessage
	}

	var recipient models.User
	if err := s.db.First(&recipient, "id = ?", req.RecipientID).Error; err != nil {
		return nil, ErrRecipientNotFound
	}

	message := models.Message{
		SenderID:      senderID,
		ReceiverID:    req.RecipientID,
		Content:       req.Content,
		Status:        models.MessageSent,
		DealID:        req.DealID,
		AttachmentURL: req.AttachmentURL,
	}
	preview := truncatePreview(req.Content)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		conversation, err := s.resolveConversation(tx, senderID, req.RecipientID, req.DealID)
		if err != nil {
			return err
		}

		message.ConversationID = conversation.ID
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		summary := map[string]interface{}{
			"last_message_preview": preview,
			"last_message_at":      message.CreatedAt,
		}
		if err := tx.Model(conversation).Updates(summary).Error; err != nil {
			return err
		}

		// Recipient side: bump the unread counter. Sender side: summary
		// only, so the conversation shows in both lists after the first
		// message even before any reply.
		if err := upsertContact(tx, req.RecipientID, senderID, &message, preview, true); err != nil {
			return err
		}
		return upsertContact(tx, senderID, req.RecipientID, &message, preview, false)
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.MessageEvent{
		EventType:      events.EventMessageSent,
		MessageID:      message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		ReceiverID:     message.ReceiverID,
		Preview:        preview,
		Status:         models.MessageSent,
		OccurredAt:     message.CreatedAt,
	})

	return &message, nil
}

// MarkDelivered transitions one message from sent to delivered. It is
// invoked by the hub when a live session for the recipient receives the
// sent event, and is a no-op for messages already past sent.
func (s *MessageService) MarkDelivered(messageID uuid.UUID) error {
	var message models.Message
	if err := s.db.First(&message, "id = ?", messageID).Error; err != nil {
		return ErrMessageNotFound
	}

	result := s.db.Model(&models.Message{}).
		Where("id = ? AND status = ?", messageID, models.MessageSent).
		Update("status", models.MessageDelivered)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}

	s.publish(events.MessageEvent{
		EventType:      events.EventMessageDelivered,
		MessageID:      message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		ReceiverID:     message.ReceiverID,
		Status:         models.MessageDelivered,
		OccurredAt:     time.Now(),
	})
	return nil
}

// MarkConversationRead transitions every sent/delivered message from the
// given contact to read and resets the caller's unread counter, atomically.
// Messages from other contacts are untouched.
func (s *MessageService) MarkConversationRead(userID, contactID uuid.UUID) error {
	now := time.Now()
	var conversationID uuid.UUID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND status IN ?",
				contactID, userID, []models.MessageStatus{models.MessageSent, models.MessageDelivered}).
			Update("status", models.MessageRead).Error; err != nil {
			return err
		}

		var contact models.Contact
		err := tx.Where("user_id = ? AND contact_id = ?", userID, contactID).First(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		var conversation models.Conversation
		if err := tx.Select("id").
			Where("participant_key = ?", models.ParticipantKeyFor(userID, contactID)).
			First(&conversation).Error; err == nil {
			conversationID = conversation.ID
		}

		return tx.Model(&contact).Updates(map[string]interface{}{
			"unread_count": 0,
			"last_read_at": now,
		}).Error
	})
	if err != nil {
		return err
	}

	if conversationID != uuid.Nil {
		s.publish(events.MessageEvent{
			EventType:      events.EventMessageRead,
			ConversationID: conversationID,
			SenderID:       contactID,
			ReceiverID:     userID,
			Status:         models.MessageRead,
			OccurredAt:     now,
		})
	}
	return nil
}

// History returns the conversation with a contact ordered by the
// server-assigned timestamp, oldest first. Ties are left unresolved.
func (s *MessageService) History(userID, contactID uuid.UUID, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var conversation models.Conversation
	err := s.db.Where("participant_key = ?", models.ParticipantKeyFor(userID, contactID)).
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Message{}, nil
	} else if err != nil {
		return nil, err
	}

	var messages []models.Message
	err = s.db.Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// Contacts returns the caller's contact list newest-conversation-first,
// joined with each counterparty's display fields.
func (s *MessageService) Contacts(userID uuid.UUID) ([]dto.ContactResponse, error) {
	var contacts []models.Contact
	if err := s.db.Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}

	result := make([]dto.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		entry := dto.ContactResponse{
			ID:              contact.ContactID,
			LastMessage:     contact.LastMessagePreview,
			LastMessageTime: contact.LastMessageAt,
			Unread:          contact.UnreadCount,
		}

		var user models.User
		if err := s.db.First(&user, "id = ?", contact.ContactID).Error; err != nil {
			entry.Name = "Unknown User"
			result = append(result, entry)
			continue
		}
		entry.Role = user.Role
		entry.Name = user.Email

		switch user.Role {
		case models.RoleInfluencer:
			var influencer models.Influencer
			if err := s.db.Where("user_id = ?", user.ID).First(&influencer).Error; err == nil {
				entry.Name = influencer.FirstName + " " + influencer.LastName
				entry.Avatar = influencer.Avatar
			}
		case models.RoleBrand:
			var brand models.Brand
			if err := s.db.Where("user_id = ?", user.ID).First(&brand).Error; err == nil {
				entry.Name = brand.CompanyName
				entry.Avatar = brand.Logo
			}
		}

		result = append(result, entry)
	}

	return result, nil
}

// resolveConversation finds or creates the conversation for a user pair.
// The sorted-pair key makes the lookup independent of who initiates.
func (s *MessageService) resolveConversation(tx *gorm.DB, a, b uuid.UUID, dealID *uuid.UUID) (*models.Conversation, error) {
	key := models.ParticipantKeyFor(a, b)

	var conversation models.Conversation
	err := tx.Where("participant_key = ?", key).First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	first, second := a, b
	if second.String() < first.String() {
		first, second = second, first
	}
	conversation = models.Conversation{
		ParticipantKey: key,
		ParticipantAID: first,
		ParticipantBID: second,
		DealID:         dealID,
		LastMessageAt:  time.Now(),
	}
	if err := tx.Create(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func upsertContact(tx *gorm.DB, userID, counterpartyID uuid.UUID, message *models.Message, preview string, incrementUnread bool) error {
	var contact models.Contact
	err := tx.Where("user_id = ? AND contact_id = ?", userID, counterpartyID).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		contact = models.Contact{
			UserID:             userID,
			ContactID:          counterpartyID,
			LastMessageID:      &message.ID,
			LastMessagePreview: preview,
			LastMessageAt:      message.CreatedAt,
		}
		if incrementUnread {
			contact.UnreadCount = 1
		}
		return tx.Create(&contact).Error
	} else if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"last_message_id":      message.ID,
		"last_message_preview": preview,
		"last_message_at":      message.CreatedAt,
	}
	if incrementUnread {
		updates["unread_count"] = gorm.Expr("unread_count + 1")
	}
	return tx.Model(&contact).Updates(updates).Error
}

func (s *MessageService) publish(ev events.MessageEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ev); err != nil {
		slog.Error("message event publish failed", "event", ev.EventType, "message_id", ev.MessageID, "error", err)
	}
}

func truncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLen {
		return content
	}
	return string(runes[:previewLen])
}
