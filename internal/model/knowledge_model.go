package model

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeDocument struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	MimeType    string    `gorm:"type:varchar(100);not null"`
	Size        int64     `gorm:"not null"`
	StorageKey  string    `gorm:"type:varchar(255);not null"`
	Status      string    `gorm:"type:varchar(20);not null"`
	Excerpt     string    `gorm:"type:text"`
	Checksum    string    `gorm:"type:varchar(64)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	ProcessedAt *time.Time
}

func (KnowledgeDocument) TableName() string {
	return "knowledge_documents"
}
