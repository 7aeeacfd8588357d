package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"ai-fitcoach-be/internal/constant"
	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
)

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

func conversationTitle(firstMessage string) string {
	title := strings.Join(strings.Fields(firstMessage), " ")
	if title == "" {
		return constant.ImageOnlyConversationTitle
	}
	return truncateRunes(title, constant.ConversationTitleMaxRunes)
}

// laterThan returns now, nudged forward so it sorts strictly after t.
func laterThan(t time.Time) time.Time {
	now := time.Now()
	if !now.After(t) {
		return t.Add(time.Millisecond)
	}
	return now
}

func reverseMessages(msgs []*entity.ChatMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

func ChatMessageToDTO(m *entity.ChatMessage) *dto.ChatMessageDTO {
	if m == nil {
		return nil
	}
	out := &dto.ChatMessageDTO{
		Id:        m.Id,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.HasImage() {
		mimeType := ""
		if m.ImageMimeType != nil {
			mimeType = *m.ImageMimeType
		}
		out.Image = &dto.MessageImageDTO{Data: *m.ImageData, MimeType: mimeType}
	}
	return out
}

func ConversationToDTO(c *entity.Conversation) *dto.ConversationDTO {
	if c == nil {
		return nil
	}
	return &dto.ConversationDTO{
		Id:           c.Id,
		Title:        c.Title,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		LastMessage:  c.LastMessage,
		MessageCount: c.MessageCount,
	}
}
