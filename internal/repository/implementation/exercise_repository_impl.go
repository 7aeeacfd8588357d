package implementation

import (
	"context"
	"errors"

	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/mapper"
	"ai-fitcoach-be/internal/model"
	"ai-fitcoach-be/internal/repository/contract"
	"ai-fitcoach-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExerciseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExerciseMapper
}

func NewExerciseRepository(db *gorm.DB) contract.ExerciseRepository {
	return &ExerciseRepositoryImpl{
		db:     db,
		mapper: mapper.NewExerciseMapper(),
	}
}

// --- Categories ---

func (r *ExerciseRepositoryImpl) CreateCategory(ctx context.Context, category *entity.ExerciseCategory) error {
	m := r.mapper.CategoryToModel(category)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*category = *r.mapper.CategoryToEntity(m)
	return nil
}

func (r *ExerciseRepositoryImpl) UpdateCategory(ctx context.Context, category *entity.ExerciseCategory) error {
	m := r.mapper.CategoryToModel(category)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*category = *r.mapper.CategoryToEntity(m)
	return nil
}

func (r *ExerciseRepositoryImpl) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ExerciseCategory{}).Error
}

func (r *ExerciseRepositoryImpl) FindOneCategory(ctx context.Context, specs ...specification.Specification) (*entity.ExerciseCategory, error) {
	var m model.ExerciseCategory
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CategoryToEntity(&m), nil
}

func (r *ExerciseRepositoryImpl) FindAllCategories(ctx context.Context, specs ...specification.Specification) ([]*entity.ExerciseCategory, error) {
	var models []*model.ExerciseCategory
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.ExerciseCategory, len(models))
	for i, m := range models {
		out[i] = r.mapper.CategoryToEntity(m)
	}
	return out, nil
}

// --- Exercises ---

func (r *ExerciseRepositoryImpl) Create(ctx context.Context, exercise *entity.Exercise) error {
	m := r.mapper.ExerciseToModel(exercise)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*exercise = *r.mapper.ExerciseToEntity(m)
	return nil
}

func (r *ExerciseRepositoryImpl) Update(ctx context.Context, exercise *entity.Exercise) error {
	m := r.mapper.ExerciseToModel(exercise)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*exercise = *r.mapper.ExerciseToEntity(m)
	return nil
}

func (r *ExerciseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Exercise{}).Error
}

func (r *ExerciseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Exercise, error) {
	var m model.Exercise
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ExerciseToEntity(&m), nil
}

func (r *ExerciseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exercise, error) {
	var models []*model.Exercise
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Exercise, len(models))
	for i, m := range models {
		out[i] = r.mapper.ExerciseToEntity(m)
	}
	return out, nil
}

func (r *ExerciseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Exercise{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
