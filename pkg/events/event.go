package events

import (
	"context"
	"time"
)

// Event defines the contract for all domain events.
type Event interface {
	// EventType returns the subject suffix, e.g. "chat.sent".
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Publisher is implemented by the NATS publisher. A nil Publisher is valid for Emit.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeChatSent              = "chat.sent"
	TypeConversationDeleted   = "conversation.deleted"
	TypeSubscriptionActivated = "subscription.activated"
	TypeKnowledgeUploaded     = "knowledge.uploaded"
)

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}
