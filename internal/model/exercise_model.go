package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ExerciseCategory struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Slug        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	SortOrder   int       `gorm:"default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (ExerciseCategory) TableName() string {
	return "exercise_categories"
}

type Exercise struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CategoryId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name         string         `gorm:"type:varchar(150);not null"`
	Slug         string         `gorm:"type:varchar(150);uniqueIndex;not null"`
	Description  string         `gorm:"type:text"`
	Instructions string         `gorm:"type:text"`
	Difficulty   string         `gorm:"type:varchar(20)"`
	Equipment    string         `gorm:"type:varchar(255)"`
	Translations datatypes.JSON // map[locale]ExerciseTranslation
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (Exercise) TableName() string {
	return "exercises"
}
