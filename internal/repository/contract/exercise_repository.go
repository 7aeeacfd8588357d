package contract

import (
	"context"

	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ExerciseRepository interface {
	// Categories
	CreateCategory(ctx context.Context, category *entity.ExerciseCategory) error
	UpdateCategory(ctx context.Context, category *entity.ExerciseCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	FindOneCategory(ctx context.Context, specs ...specification.Specification) (*entity.ExerciseCategory, error)
	FindAllCategories(ctx context.Context, specs ...specification.Specification) ([]*entity.ExerciseCategory, error)

	// Exercises
	Create(ctx context.Context, exercise *entity.Exercise) error
	Update(ctx context.Context, exercise *entity.Exercise) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Exercise, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exercise, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
