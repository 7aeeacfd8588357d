package dto

import (
	"time"

	"github.com/google/uuid"
)

type ConversationDTO struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	LastMessage  *string    `json:"lastMessage,omitempty"`
	MessageCount int        `json:"messageCount"`
}

type ListConversationsResponse struct {
	Conversations []*ConversationDTO `json:"conversations"`
}

type ConversationWithMessagesDTO struct {
	ConversationDTO
	Messages []*ChatMessageDTO `json:"messages"`
}

type ConversationMessagesResponse struct {
	Conversation *ConversationWithMessagesDTO `json:"conversation"`
}
