package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	ImageData      *string // base64, user messages only
	ImageMimeType  *string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

func (m ChatMessage) HasImage() bool {
	return m.ImageData != nil && *m.ImageData != ""
}
