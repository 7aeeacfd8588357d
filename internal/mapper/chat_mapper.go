package mapper

import (
	"time"

	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/model"

	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func softDeleteToEntity(d gorm.DeletedAt) (*time.Time, bool) {
	if !d.Valid {
		return nil, false
	}
	t := d.Time
	return &t, true
}

func softDeleteToModel(deletedAt *time.Time, isDeleted bool) gorm.DeletedAt {
	if deletedAt != nil {
		return gorm.DeletedAt{Time: *deletedAt, Valid: true}
	}
	if isDeleted {
		return gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return gorm.DeletedAt{}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Conversation

func (m *ChatMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	deletedAt, isDeleted := softDeleteToEntity(c.DeletedAt)
	return &entity.Conversation{
		Id:           c.Id,
		UserId:       c.UserId,
		Title:        c.Title,
		LastMessage:  c.LastMessage,
		MessageCount: c.MessageCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    optionalTime(c.UpdatedAt),
		DeletedAt:    deletedAt,
		IsDeleted:    isDeleted,
	}
}

func (m *ChatMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}
	return &model.Conversation{
		Id:           c.Id,
		UserId:       c.UserId,
		Title:        c.Title,
		LastMessage:  c.LastMessage,
		MessageCount: c.MessageCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    softDeleteToModel(c.DeletedAt, c.IsDeleted),
	}
}

func (m *ChatMapper) ConversationsToEntities(models []*model.Conversation) []*entity.Conversation {
	out := make([]*entity.Conversation, len(models))
	for i, c := range models {
		out[i] = m.ConversationToEntity(c)
	}
	return out
}

// Message

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	deletedAt, isDeleted := softDeleteToEntity(msg.DeletedAt)
	return &entity.ChatMessage{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		ImageData:      msg.ImageData,
		ImageMimeType:  msg.ImageMimeType,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      optionalTime(msg.UpdatedAt),
		DeletedAt:      deletedAt,
		IsDeleted:      isDeleted,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}
	return &model.ChatMessage{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           msg.Role,
		Content:        msg.Content,
		ImageData:      msg.ImageData,
		ImageMimeType:  msg.ImageMimeType,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      softDeleteToModel(msg.DeletedAt, msg.IsDeleted),
	}
}

func (m *ChatMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		out[i] = m.ChatMessageToEntity(msg)
	}
	return out
}
