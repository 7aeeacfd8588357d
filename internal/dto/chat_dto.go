package dto

import (
	"time"

	"github.com/google/uuid"
)

// Caller is the identity a request runs as, resolved from the bearer token.
type Caller struct {
	UserId  uuid.UUID
	Email   string
	Role    string
	IsGuest bool
}

func GuestCaller() Caller {
	return Caller{IsGuest: true}
}

func (c Caller) IsAdmin() bool {
	return !c.IsGuest && c.Role == "admin"
}

// SendChatRequest is bound from JSON, or from multipart form fields when an image is attached.
type SendChatRequest struct {
	Message        string     `json:"message" form:"message"`
	ConversationId string     `json:"conversationId" form:"conversationId"`
	IsGuest        bool       `json:"isGuest" form:"isGuest"`
	Image          *ChatImage `json:"-" form:"-"`
}

type ChatImage struct {
	FileName string
	MimeType string
	Data     []byte
}

type MessageImageDTO struct {
	Data     string `json:"data"` // base64
	MimeType string `json:"mimeType"`
}

type ChatMessageDTO struct {
	Id        uuid.UUID        `json:"id"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Image     *MessageImageDTO `json:"image,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type SendChatResponse struct {
	ConversationId   uuid.UUID       `json:"conversationId"`
	Title            string          `json:"title"`
	Content          string          `json:"content"`
	UserMessage      *ChatMessageDTO `json:"userMessage,omitempty"`
	AssistantMessage *ChatMessageDTO `json:"assistantMessage,omitempty"`
}
