package dto

import (
	"time"

	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	SortOrder   int    `json:"sort_order"`
}

type CategoryResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
}

type ExerciseTranslationDTO struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
}

type ExerciseRequest struct {
	CategoryId   uuid.UUID                         `json:"category_id" validate:"required"`
	Name         string                            `json:"name" validate:"required,max=150"`
	Slug         string                            `json:"slug" validate:"required,max=150"`
	Description  string                            `json:"description"`
	Instructions string                            `json:"instructions"`
	Difficulty   string                            `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Equipment    string                            `json:"equipment"`
	Translations map[string]ExerciseTranslationDTO `json:"translations" validate:"omitempty,dive"`
}

type ExerciseResponse struct {
	Id           uuid.UUID                         `json:"id"`
	CategoryId   uuid.UUID                         `json:"category_id"`
	Name         string                            `json:"name"`
	Slug         string                            `json:"slug"`
	Description  string                            `json:"description"`
	Instructions string                            `json:"instructions"`
	Difficulty   string                            `json:"difficulty"`
	Equipment    string                            `json:"equipment"`
	Locale       string                            `json:"locale,omitempty"`
	Translations map[string]ExerciseTranslationDTO `json:"translations,omitempty"`
	CreatedAt    time.Time                         `json:"created_at"`
}

// ExerciseListQuery is bound from the query string of GET /api/exercises.
type ExerciseListQuery struct {
	Category   string `query:"category"`
	Difficulty string `query:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Search     string `query:"q"`
	Locale     string `query:"locale"`
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

type ExerciseListResponse struct {
	Exercises []*ExerciseResponse `json:"exercises"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	PageSize  int                 `json:"page_size"`
}
