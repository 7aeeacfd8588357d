package entity

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type ExerciseCategory struct {
	Id          uuid.UUID
	Name        string
	Slug        string
	Description string
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ExerciseTranslation struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
}

type Exercise struct {
	Id           uuid.UUID
	CategoryId   uuid.UUID
	Name         string
	Slug         string
	Description  string
	Instructions string
	Difficulty   Difficulty
	Equipment    string
	Translations map[string]ExerciseTranslation // locale -> content
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Localized returns a copy with the locale's translation applied, if one exists.
func (e Exercise) Localized(locale string) (Exercise, bool) {
	t, ok := e.Translations[locale]
	if !ok || t.Name == "" {
		return e, false
	}
	e.Name = t.Name
	if t.Description != "" {
		e.Description = t.Description
	}
	if t.Instructions != "" {
		e.Instructions = t.Instructions
	}
	return e, true
}
