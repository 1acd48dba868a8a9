package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inflowhq/inflow-backend/internal/dto"
	"github.com/inflowhq/inflow-backend/internal/events"
	"github.com/inflowhq/inflow-backend/internal/models"
)

// capturePublisher records events instead of fanning them out.
type capturePublisher struct {
	events []events.MessageEvent
}

func (p *capturePublisher) Publish(ev events.MessageEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func messagingFixture(t *testing.T) (*gorm.DB, *MessageService, *capturePublisher, *models.User, *models.User) {
	t.Helper()
	db := setupTestDB(t)
	publisher := &capturePublisher{}
	svc := NewMessageService(db, publisher)
	alice := seedUser(t, db, "alice@example.com", models.RoleInfluencer)
	bob := seedUser(t, db, "bob@example.com", models.RoleBrand)
	return db, svc, publisher, alice, bob
}

func contactRow(t *testing.T, db *gorm.DB, userID, contactID uuid.UUID) *models.Contact {
	t.Helper()
	var contact models.Contact
	if err := db.Where("user_id = ? AND contact_id = ?", userID, contactID).First(&contact).Error; err != nil {
		t.Fatalf("contact row %s->%s: %v", userID, contactID, err)
	}
	return &contact
}

func TestSendBootstrapsBothContacts(t *testing.T) {
	db, svc, publisher, alice, bob := messagingFixture(t)

	message, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.Status != models.MessageSent {
		t.Fatalf("new message should be sent, got %s", message.Status)
	}

	// Recipient unread goes to 1, sender stays at 0, both rows exist.
	if got := contactRow(t, db, bob.ID, alice.ID).UnreadCount; got != 1 {
		t.Fatalf("recipient unread = %d, want 1", got)
	}
	if got := contactRow(t, db, alice.ID, bob.ID).UnreadCount; got != 0 {
		t.Fatalf("sender unread = %d, want 0", got)
	}

	if len(publisher.events) != 1 || publisher.events[0].EventType != events.EventMessageSent {
		t.Fatalf("expected one sent event, got %+v", publisher.events)
	}
}

func TestSendIncrementsUnreadPerMessage(t *testing.T) {
	db, svc, _, alice, bob := messagingFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "m"}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if got := contactRow(t, db, bob.ID, alice.ID).UnreadCount; got != 3 {
		t.Fatalf("unread = %d, want 3", got)
	}

	// Only one conversation regardless of direction.
	if _, err := svc.Send(bob.ID, &dto.SendMessageRequest{RecipientID: alice.ID, Content: "reply"}); err != nil {
		t.Fatalf("reply: %v", err)
	}
	var conversations int64
	db.Model(&models.Conversation{}).Count(&conversations)
	if conversations != 1 {
		t.Fatalf("expected 1 conversation, got %d", conversations)
	}
}

func TestSendRejectsSelfAndEmpty(t *testing.T) {
	_, svc, _, alice, bob := messagingFixture(t)

	if _, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: alice.ID, Content: "hi"}); !errors.Is(err, ErrSelfMessage) {
		t.Fatalf("expected ErrSelfMessage, got %v", err)
	}
	if _, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: uuid.New(), Content: "hi"}); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}
}

func TestSendMarksDeliveredForActiveRecipient(t *testing.T) {
	db := setupTestDB(t)
	hub := events.NewHub()
	svc := NewMessageService(db, hub)
	hub.SetDeliveryMarker(svc)

	alice := seedUser(t, db, "alice@example.com", models.RoleInfluencer)
	bob := seedUser(t, db, "bob@example.com", models.RoleBrand)

	// Bob has a live session, so Alice's message transitions to delivered
	// the moment the sent event is dispatched.
	session := hub.Subscribe(bob.ID)
	defer session.Close()

	message, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	var stored models.Message
	db.First(&stored, "id = ?", message.ID)
	if stored.Status != models.MessageDelivered {
		t.Fatalf("status = %s, want delivered with an active session", stored.Status)
	}

	received := <-session.Events()
	if received.EventType != events.EventMessageSent || received.MessageID != message.ID {
		t.Fatalf("unexpected event on session: %+v", received)
	}

	// Without a session the message stays sent.
	session.Close()
	second, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "again"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	var storedSecond models.Message
	db.First(&storedSecond, "id = ?", second.ID)
	if storedSecond.Status != models.MessageSent {
		t.Fatalf("status = %s, want sent with no session", storedSecond.Status)
	}
}

func TestMarkDeliveredIsIdempotent(t *testing.T) {
	db, svc, publisher, alice, bob := messagingFixture(t)

	message, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.MarkDelivered(message.ID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	// Second call is a no-op and emits nothing.
	if err := svc.MarkDelivered(message.ID); err != nil {
		t.Fatalf("second mark delivered: %v", err)
	}

	var stored models.Message
	db.First(&stored, "id = ?", message.ID)
	if stored.Status != models.MessageDelivered {
		t.Fatalf("status = %s, want delivered", stored.Status)
	}

	delivered := 0
	for _, ev := range publisher.events {
		if ev.EventType == events.EventMessageDelivered {
			delivered++
		}
	}
	if delivered != 1 {
		t.Fatalf("delivered events = %d, want 1", delivered)
	}
}

func TestMarkConversationReadScopedToContact(t *testing.T) {
	db, svc, _, alice, bob := messagingFixture(t)
	carol := seedUser(t, db, "carol@example.com", models.RoleInfluencer)

	for i := 0; i < 2; i++ {
		if _, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "from alice"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if _, err := svc.Send(carol.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "from carol"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.MarkConversationRead(bob.ID, alice.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	// Alice's messages are read, her counter reset; Carol's untouched.
	var unreadFromAlice int64
	db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND status <> ?", alice.ID, bob.ID, models.MessageRead).
		Count(&unreadFromAlice)
	if unreadFromAlice != 0 {
		t.Fatalf("alice messages not all read, %d remaining", unreadFromAlice)
	}

	if got := contactRow(t, db, bob.ID, alice.ID).UnreadCount; got != 0 {
		t.Fatalf("alice contact unread = %d, want 0", got)
	}
	if got := contactRow(t, db, bob.ID, carol.ID).UnreadCount; got != 1 {
		t.Fatalf("carol contact unread = %d, want 1", got)
	}

	var fromCarol models.Message
	db.Where("sender_id = ?", carol.ID).First(&fromCarol)
	if fromCarol.Status != models.MessageSent {
		t.Fatalf("carol message status = %s, want sent", fromCarol.Status)
	}
}

func TestHistoryOrderedOldestFirst(t *testing.T) {
	_, svc, _, alice, bob := messagingFixture(t)

	for _, content := range []string{"one", "two", "three"} {
		if _, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: content}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	messages, err := svc.History(bob.ID, alice.ID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Content != "one" || messages[2].Content != "three" {
		t.Fatalf("history out of order: %s .. %s", messages[0].Content, messages[2].Content)
	}

	// No conversation yet returns an empty slice, not an error.
	empty, err := svc.History(bob.ID, uuid.New(), 0)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty history, got %d messages, err %v", len(empty), err)
	}
}

func TestContactsJoinsDisplayFields(t *testing.T) {
	db, svc, _, alice, bob := messagingFixture(t)

	db.Create(&models.Influencer{UserID: alice.ID, FirstName: "Alice", LastName: "Doe", Avatar: "a.png"})
	db.Create(&models.Brand{UserID: bob.ID, CompanyName: "Acme", Logo: "acme.png"})

	if _, err := svc.Send(alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	bobContacts, err := svc.Contacts(bob.ID)
	if err != nil {
		t.Fatalf("contacts: %v", err)
	}
	if len(bobContacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(bobContacts))
	}
	if bobContacts[0].Name != "Alice Doe" || bobContacts[0].Avatar != "a.png" {
		t.Fatalf("influencer display fields wrong: %+v", bobContacts[0])
	}
	if bobContacts[0].Unread != 1 || bobContacts[0].LastMessage != "hello" {
		t.Fatalf("summary fields wrong: %+v", bobContacts[0])
	}

	aliceContacts, err := svc.Contacts(alice.ID)
	if err != nil {
		t.Fatalf("contacts: %v", err)
	}
	if aliceContacts[0].Name != "Acme" || aliceContacts[0].Avatar != "acme.png" {
		t.Fatalf("brand display fields wrong: %+v", aliceContacts[0])
	}
}
