package dto

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Status    string    `json:"status"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Checksum  string    `json:"checksum,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeDownload is what the controller streams back to the client.
type KnowledgeDownload struct {
	FileName string
	MimeType string
	Size     int64
	Path     string
}

// ProcessKnowledgeDocumentMessage is the payload queued after an upload.
type ProcessKnowledgeDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
