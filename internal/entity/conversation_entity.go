package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Title        string
	LastMessage  *string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}

// GuestConversation is a guest thread held in memory only.
type GuestConversation struct {
	Conversation Conversation
	Messages     []ChatMessage
}
