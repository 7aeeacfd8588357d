package entity

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeStatus string

const (
	KnowledgeStatusProcessing KnowledgeStatus = "processing"
	KnowledgeStatusReady      KnowledgeStatus = "ready"
	KnowledgeStatusFailed     KnowledgeStatus = "failed"
)

type KnowledgeDocument struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	FileName    string
	MimeType    string
	Size        int64
	StorageKey  string // relative to the user's storage directory
	Status      KnowledgeStatus
	Excerpt     string
	Checksum    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time
}
