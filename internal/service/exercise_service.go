package service

import (
	"context"
	"strings"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const defaultExercisePageSize = 20

type IExerciseService interface {
	// Public
	ListCategories(ctx context.Context) ([]*dto.CategoryResponse, error)
	ListExercises(ctx context.Context, query *dto.ExerciseListQuery) (*dto.ExerciseListResponse, error)
	GetExercise(ctx context.Context, id uuid.UUID, locale string) (*dto.ExerciseResponse, error)

	// Admin
	CreateCategory(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateExercise(ctx context.Context, req *dto.ExerciseRequest) (*dto.ExerciseResponse, error)
	UpdateExercise(ctx context.Context, id uuid.UUID, req *dto.ExerciseRequest) (*dto.ExerciseResponse, error)
	DeleteExercise(ctx context.Context, id uuid.UUID) error
}

type exerciseService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewExerciseService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IExerciseService {
	return &exerciseService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func (s *exerciseService) ListCategories(ctx context.Context) ([]*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	categories, err := uow.ExerciseRepository().FindAllCategories(ctx,
		specification.OrderBy{Field: "sort_order"},
		specification.OrderBy{Field: "name"},
	)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, categoryToResponse(c))
	}
	return res, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, query *dto.ExerciseListQuery) (*dto.ExerciseListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var specs []specification.Specification
	if query.Category != "" {
		category, err := uow.ExerciseRepository().FindOneCategory(ctx, specification.BySlug{Slug: normalizeSlug(query.Category)})
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, dto.NewNotFoundError("category not found")
		}
		specs = append(specs, specification.ByCategoryID{CategoryID: category.Id})
	}
	if query.Difficulty != "" {
		specs = append(specs, specification.ByDifficulty{Difficulty: query.Difficulty})
	}
	if q := strings.TrimSpace(query.Search); q != "" {
		specs = append(specs, specification.NameContains{Query: q})
	}

	total, err := uow.ExerciseRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultExercisePageSize
	}
	pageSpecs := append(specs,
		specification.OrderBy{Field: "name"},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)

	exercises, err := uow.ExerciseRepository().FindAll(ctx, pageSpecs...)
	if err != nil {
		return nil, err
	}

	res := &dto.ExerciseListResponse{
		Exercises: make([]*dto.ExerciseResponse, 0, len(exercises)),
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}
	for _, e := range exercises {
		res.Exercises = append(res.Exercises, exerciseToResponse(e, query.Locale, false))
	}
	return res, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, id uuid.UUID, locale string) (*dto.ExerciseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	exercise, err := uow.ExerciseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if exercise == nil {
		return nil, dto.NewNotFoundError("exercise not found")
	}
	return exerciseToResponse(exercise, locale, locale == ""), nil
}

func (s *exerciseService) CreateCategory(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	slug := normalizeSlug(req.Slug)
	if err := s.ensureCategorySlugFree(ctx, uow, slug, uuid.Nil); err != nil {
		return nil, err
	}
	category := &entity.ExerciseCategory{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if err := uow.ExerciseRepository().CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return categoryToResponse(category), nil
}

func (s *exerciseService) UpdateCategory(ctx context.Context, id uuid.UUID, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	category, err := uow.ExerciseRepository().FindOneCategory(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, dto.NewNotFoundError("category not found")
	}
	slug := normalizeSlug(req.Slug)
	if err := s.ensureCategorySlugFree(ctx, uow, slug, id); err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Slug = slug
	category.Description = req.Description
	category.SortOrder = req.SortOrder
	if err := uow.ExerciseRepository().UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return categoryToResponse(category), nil
}

func (s *exerciseService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	category, err := uow.ExerciseRepository().FindOneCategory(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if category == nil {
		return dto.NewNotFoundError("category not found")
	}
	count, err := uow.ExerciseRepository().Count(ctx, specification.ByCategoryID{CategoryID: id})
	if err != nil {
		return err
	}
	if count > 0 {
		return dto.NewValidationError("category still has exercises")
	}
	if err := uow.ExerciseRepository().DeleteCategory(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *exerciseService) ensureCategorySlugFree(ctx context.Context, uow unitofwork.UnitOfWork, slug string, self uuid.UUID) error {
	existing, err := uow.ExerciseRepository().FindOneCategory(ctx, specification.BySlug{Slug: slug})
	if err != nil {
		return err
	}
	if existing != nil && existing.Id != self {
		return dto.NewValidationError("slug already in use")
	}
	return nil
}

func (s *exerciseService) ensureExerciseSlugFree(ctx context.Context, uow unitofwork.UnitOfWork, slug string, self uuid.UUID) error {
	existing, err := uow.ExerciseRepository().FindOne(ctx, specification.BySlug{Slug: slug})
	if err != nil {
		return err
	}
	if existing != nil && existing.Id != self {
		return dto.NewValidationError("slug already in use")
	}
	return nil
}

func (s *exerciseService) applyExerciseRequest(ctx context.Context, uow unitofwork.UnitOfWork, exercise *entity.Exercise, req *dto.ExerciseRequest) error {
	category, err := uow.ExerciseRepository().FindOneCategory(ctx, specification.ByID{ID: req.CategoryId})
	if err != nil {
		return err
	}
	if category == nil {
		return dto.NewValidationError("category does not exist")
	}
	slug := normalizeSlug(req.Slug)
	if err := s.ensureExerciseSlugFree(ctx, uow, slug, exercise.Id); err != nil {
		return err
	}

	exercise.CategoryId = category.Id
	exercise.Name = strings.TrimSpace(req.Name)
	exercise.Slug = slug
	exercise.Description = req.Description
	exercise.Instructions = req.Instructions
	exercise.Difficulty = entity.Difficulty(req.Difficulty)
	exercise.Equipment = req.Equipment
	exercise.Translations = make(map[string]entity.ExerciseTranslation, len(req.Translations))
	for locale, t := range req.Translations {
		exercise.Translations[strings.ToLower(strings.TrimSpace(locale))] = entity.ExerciseTranslation{
			Name:         t.Name,
			Description:  t.Description,
			Instructions: t.Instructions,
		}
	}
	return nil
}

func (s *exerciseService) CreateExercise(ctx context.Context, req *dto.ExerciseRequest) (*dto.ExerciseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	exercise := &entity.Exercise{}
	if err := s.applyExerciseRequest(ctx, uow, exercise, req); err != nil {
		return nil, err
	}
	if err := uow.ExerciseRepository().Create(ctx, exercise); err != nil {
		return nil, err
	}
	s.logger.Info("EXERCISE", "exercise created", map[string]interface{}{"id": exercise.Id.String(), "slug": exercise.Slug})
	return exerciseToResponse(exercise, "", true), nil
}

func (s *exerciseService) UpdateExercise(ctx context.Context, id uuid.UUID, req *dto.ExerciseRequest) (*dto.ExerciseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	exercise, err := uow.ExerciseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if exercise == nil {
		return nil, dto.NewNotFoundError("exercise not found")
	}
	if err := s.applyExerciseRequest(ctx, uow, exercise, req); err != nil {
		return nil, err
	}
	if err := uow.ExerciseRepository().Update(ctx, exercise); err != nil {
		return nil, err
	}
	return exerciseToResponse(exercise, "", true), nil
}

func (s *exerciseService) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	exercise, err := uow.ExerciseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if exercise == nil {
		return dto.NewNotFoundError("exercise not found")
	}
	return uow.ExerciseRepository().Delete(ctx, id)
}

func categoryToResponse(c *entity.ExerciseCategory) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		Id:          c.Id,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
	}
}

// exerciseToResponse localizes when the locale has a translation; withTranslations exposes the raw map.
func exerciseToResponse(e *entity.Exercise, locale string, withTranslations bool) *dto.ExerciseResponse {
	view := *e
	appliedLocale := ""
	if locale != "" {
		if localized, ok := e.Localized(strings.ToLower(locale)); ok {
			view = localized
			appliedLocale = strings.ToLower(locale)
		}
	}
	res := &dto.ExerciseResponse{
		Id:           view.Id,
		CategoryId:   view.CategoryId,
		Name:         view.Name,
		Slug:         view.Slug,
		Description:  view.Description,
		Instructions: view.Instructions,
		Difficulty:   string(view.Difficulty),
		Equipment:    view.Equipment,
		Locale:       appliedLocale,
		CreatedAt:    view.CreatedAt,
	}
	if withTranslations && len(e.Translations) > 0 {
		res.Translations = make(map[string]dto.ExerciseTranslationDTO, len(e.Translations))
		for l, t := range e.Translations {
			res.Translations[l] = dto.ExerciseTranslationDTO{
				Name:         t.Name,
				Description:  t.Description,
				Instructions: t.Instructions,
			}
		}
	}
	return res
}
