package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByCategoryID struct {
	CategoryID uuid.UUID
}

func (s ByCategoryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category_id = ?", s.CategoryID)
}

type ByDifficulty struct {
	Difficulty string
}

func (s ByDifficulty) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("difficulty = ?", s.Difficulty)
}

// NameContains is a case-insensitive substring match that works on postgres and sqlite.
type NameContains struct {
	Query string
}

func (s NameContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(name) LIKE LOWER(?)", "%"+s.Query+"%")
}
