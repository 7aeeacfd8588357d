package mapper

import (
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/model"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(d *model.KnowledgeDocument) *entity.KnowledgeDocument {
	if d == nil {
		return nil
	}
	return &entity.KnowledgeDocument{
		Id:          d.Id,
		UserId:      d.UserId,
		Title:       d.Title,
		FileName:    d.FileName,
		MimeType:    d.MimeType,
		Size:        d.Size,
		StorageKey:  d.StorageKey,
		Status:      entity.KnowledgeStatus(d.Status),
		Excerpt:     d.Excerpt,
		Checksum:    d.Checksum,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		ProcessedAt: d.ProcessedAt,
	}
}

func (m *KnowledgeMapper) ToModel(d *entity.KnowledgeDocument) *model.KnowledgeDocument {
	if d == nil {
		return nil
	}
	return &model.KnowledgeDocument{
		Id:          d.Id,
		UserId:      d.UserId,
		Title:       d.Title,
		FileName:    d.FileName,
		MimeType:    d.MimeType,
		Size:        d.Size,
		StorageKey:  d.StorageKey,
		Status:      string(d.Status),
		Excerpt:     d.Excerpt,
		Checksum:    d.Checksum,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		ProcessedAt: d.ProcessedAt,
	}
}

func (m *KnowledgeMapper) ToEntities(models []*model.KnowledgeDocument) []*entity.KnowledgeDocument {
	out := make([]*entity.KnowledgeDocument, len(models))
	for i, d := range models {
		out[i] = m.ToEntity(d)
	}
	return out
}
