package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/pkg/events"
	"ai-fitcoach-be/pkg/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const knowledgeExcerptRunes = 500

var allowedKnowledgeTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"text/markdown":   true,
	"text/csv":        true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

type IKnowledgeService interface {
	Upload(ctx context.Context, userId uuid.UUID, title string, file *multipart.FileHeader) (*dto.KnowledgeDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.KnowledgeDocumentResponse, error)
	Download(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.KnowledgeDownload, error)
	Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error
	// Process runs in the background consumer after an upload.
	Process(ctx context.Context, documentId uuid.UUID) error
}

type knowledgeService struct {
	uowFactory     unitofwork.RepositoryFactory
	storage        *storage.LocalStorage
	queue          IPublisherService
	publisher      events.Publisher
	logger         logger.ILogger
	maxUploadBytes int64
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	store *storage.LocalStorage,
	queue IPublisherService,
	publisher events.Publisher,
	log logger.ILogger,
	maxUploadBytes int64,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:     uowFactory,
		storage:        store,
		queue:          queue,
		publisher:      publisher,
		logger:         log,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *knowledgeService) Upload(ctx context.Context, userId uuid.UUID, title string, file *multipart.FileHeader) (*dto.KnowledgeDocumentResponse, error) {
	if file == nil {
		return nil, dto.NewFileUploadError("file is required", "missing")
	}
	if file.Size > s.maxUploadBytes {
		return nil, dto.NewFileTooLargeError("file exceeds the upload limit")
	}

	src, err := file.Open()
	if err != nil {
		return nil, dto.NewFileUploadError("cannot read uploaded file", err.Error())
	}
	defer src.Close()

	head := make([]byte, 3072)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, dto.NewFileUploadError("cannot read uploaded file", err.Error())
	}
	head = head[:n]

	mimeType := detectKnowledgeType(head, file.Filename)
	if !allowedKnowledgeTypes[mimeType] {
		return nil, dto.NewFileUploadError("unsupported file type", mimeType)
	}

	key, size, err := s.storage.Save(userId, file.Filename, io.MultiReader(bytes.NewReader(head), src), s.maxUploadBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, dto.NewFileTooLargeError("file exceeds the upload limit")
		}
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	}

	doc := &entity.KnowledgeDocument{
		UserId:     userId,
		Title:      truncateRunes(title, 255),
		FileName:   filepath.Base(file.Filename),
		MimeType:   mimeType,
		Size:       size,
		StorageKey: key,
		Status:     entity.KnowledgeStatusProcessing,
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.KnowledgeRepository().Create(ctx, doc); err != nil {
		_ = s.storage.Delete(userId, key)
		return nil, err
	}

	payload, _ := json.Marshal(dto.ProcessKnowledgeDocumentMessage{DocumentId: doc.Id})
	if err := s.queue.Publish(ctx, payload); err != nil {
		s.logger.Error("KNOWLEDGE", "failed to enqueue processing", map[string]interface{}{"document_id": doc.Id.String(), "error": err.Error()})
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.New(events.TypeKnowledgeUploaded, map[string]interface{}{
			"user_id":     userId.String(),
			"document_id": doc.Id.String(),
			"mime_type":   mimeType,
			"size":        size,
		})); err != nil {
			s.logger.Warn("EVENTS", "failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}

	return knowledgeToResponse(doc), nil
}

// detectKnowledgeType sniffs the content and refines plain text by extension.
func detectKnowledgeType(head []byte, fileName string) string {
	detected, _, _ := mime.ParseMediaType(mimetype.Detect(head).String())
	if detected == "text/plain" {
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".md", ".markdown":
			return "text/markdown"
		case ".csv":
			return "text/csv"
		}
	}
	return detected
}

func (s *knowledgeService) List(ctx context.Context, userId uuid.UUID) ([]*dto.KnowledgeDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.KnowledgeRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.KnowledgeDocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, knowledgeToResponse(d))
	}
	return res, nil
}

func (s *knowledgeService) findOwned(ctx context.Context, userId, documentId uuid.UUID) (*entity.KnowledgeDocument, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.KnowledgeRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, dto.NewNotFoundError("document not found")
	}
	return doc, nil
}

func (s *knowledgeService) Download(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.KnowledgeDownload, error) {
	doc, err := s.findOwned(ctx, userId, documentId)
	if err != nil {
		return nil, err
	}
	path, err := s.storage.Path(userId, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, dto.NewNotFoundError("file not found")
		}
		return nil, err
	}
	return &dto.KnowledgeDownload{
		FileName: doc.FileName,
		MimeType: doc.MimeType,
		Size:     doc.Size,
		Path:     path,
	}, nil
}

func (s *knowledgeService) Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error {
	doc, err := s.findOwned(ctx, userId, documentId)
	if err != nil {
		return err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.KnowledgeRepository().Delete(ctx, doc.Id); err != nil {
		return err
	}
	if err := s.storage.Delete(userId, doc.StorageKey); err != nil {
		s.logger.Warn("KNOWLEDGE", "row deleted but file removal failed", map[string]interface{}{"document_id": doc.Id.String(), "error": err.Error()})
	}
	return nil
}

func (s *knowledgeService) Process(ctx context.Context, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.KnowledgeRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if doc == nil {
		// deleted before processing ran
		return nil
	}

	checksum, excerpt, procErr := s.digest(doc)
	now := time.Now()
	doc.ProcessedAt = &now
	if procErr != nil {
		doc.Status = entity.KnowledgeStatusFailed
		s.logger.Error("KNOWLEDGE", "processing failed", map[string]interface{}{"document_id": doc.Id.String(), "error": procErr.Error()})
	} else {
		doc.Status = entity.KnowledgeStatusReady
		doc.Checksum = checksum
		doc.Excerpt = excerpt
	}
	return uow.KnowledgeRepository().Update(ctx, doc)
}

func (s *knowledgeService) digest(doc *entity.KnowledgeDocument) (string, string, error) {
	f, err := s.storage.Open(doc.UserId, doc.StorageKey)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	hasher := sha256.New()
	var textBuf bytes.Buffer
	var w io.Writer = hasher
	isText := strings.HasPrefix(doc.MimeType, "text/")
	if isText {
		w = io.MultiWriter(hasher, &limitedBuffer{buf: &textBuf, max: knowledgeExcerptRunes * utf8.UTFMax})
	}
	if _, err := io.Copy(w, f); err != nil {
		return "", "", err
	}

	excerpt := ""
	if isText {
		excerpt = strings.ToValidUTF8(textBuf.String(), "")
		excerpt = truncateRunes(strings.Join(strings.Fields(excerpt), " "), knowledgeExcerptRunes)
	}
	return hex.EncodeToString(hasher.Sum(nil)), excerpt, nil
}

// limitedBuffer keeps the first max bytes and silently discards the rest.
type limitedBuffer struct {
	buf *bytes.Buffer
	max int
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if room := l.max - l.buf.Len(); room > 0 {
		if len(p) > room {
			l.buf.Write(p[:room])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}

func knowledgeToResponse(d *entity.KnowledgeDocument) *dto.KnowledgeDocumentResponse {
	return &dto.KnowledgeDocumentResponse{
		Id:        d.Id,
		Title:     d.Title,
		FileName:  d.FileName,
		MimeType:  d.MimeType,
		Size:      d.Size,
		Status:    string(d.Status),
		Excerpt:   d.Excerpt,
		Checksum:  d.Checksum,
		CreatedAt: d.CreatedAt,
	}
}
