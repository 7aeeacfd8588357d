package mapper

import (
	"encoding/json"

	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/model"

	"gorm.io/datatypes"
)

type ExerciseMapper struct{}

func NewExerciseMapper() *ExerciseMapper {
	return &ExerciseMapper{}
}

func (m *ExerciseMapper) CategoryToEntity(c *model.ExerciseCategory) *entity.ExerciseCategory {
	if c == nil {
		return nil
	}
	return &entity.ExerciseCategory{
		Id:          c.Id,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *ExerciseMapper) CategoryToModel(c *entity.ExerciseCategory) *model.ExerciseCategory {
	if c == nil {
		return nil
	}
	return &model.ExerciseCategory{
		Id:          c.Id,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (m *ExerciseMapper) ExerciseToEntity(e *model.Exercise) *entity.Exercise {
	if e == nil {
		return nil
	}
	translations := map[string]entity.ExerciseTranslation{}
	if len(e.Translations) > 0 {
		_ = json.Unmarshal(e.Translations, &translations)
	}
	return &entity.Exercise{
		Id:           e.Id,
		CategoryId:   e.CategoryId,
		Name:         e.Name,
		Slug:         e.Slug,
		Description:  e.Description,
		Instructions: e.Instructions,
		Difficulty:   entity.Difficulty(e.Difficulty),
		Equipment:    e.Equipment,
		Translations: translations,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (m *ExerciseMapper) ExerciseToModel(e *entity.Exercise) *model.Exercise {
	if e == nil {
		return nil
	}
	translations := e.Translations
	if translations == nil {
		translations = map[string]entity.ExerciseTranslation{}
	}
	raw, _ := json.Marshal(translations)
	return &model.Exercise{
		Id:           e.Id,
		CategoryId:   e.CategoryId,
		Name:         e.Name,
		Slug:         e.Slug,
		Description:  e.Description,
		Instructions: e.Instructions,
		Difficulty:   string(e.Difficulty),
		Equipment:    e.Equipment,
		Translations: datatypes.JSON(raw),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
