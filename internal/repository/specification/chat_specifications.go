package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// RecentFirst orders by creation time newest first and caps the result.
type RecentFirst struct {
	Limit int
}

func (s RecentFirst) Apply(db *gorm.DB) *gorm.DB {
	db = db.Order("created_at DESC")
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	return db
}
