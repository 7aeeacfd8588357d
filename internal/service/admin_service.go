package service

import (
	"context"
	"strings"
	"time"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAdminService interface {
	// User Management
	GetAllUsers(ctx context.Context, query *dto.AdminUserListQuery) ([]*dto.UserProfileResponse, error)
	UpdateAiLimit(ctx context.Context, userId uuid.UUID, req *dto.UpdateAiLimitRequest) (*dto.UserProfileResponse, error)
	ResetAiUsage(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)

	// Plan Management
	GetAllPlans(ctx context.Context) ([]*dto.AdminPlanResponse, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.AdminUpdatePlanRequest) (*dto.AdminPlanResponse, error)

	// Subscription Management
	GrantSubscription(ctx context.Context, req *dto.AdminGrantSubscriptionRequest) (*dto.SubscriptionStatusResponse, error)
}

type adminService struct {
	uowFactory  unitofwork.RepositoryFactory
	planService PlanService
	logger      logger.ILogger
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, planService PlanService, log logger.ILogger) IAdminService {
	return &adminService{
		uowFactory:  uowFactory,
		planService: planService,
		logger:      log,
	}
}

func (s *adminService) GetAllUsers(ctx context.Context, query *dto.AdminUserListQuery) ([]*dto.UserProfileResponse, error) {
	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		specs = append(specs, specification.EmailContains{Query: search})
	}

	users, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.UserProfileResponse, 0, len(users))
	for _, u := range users {
		res = append(res, userToProfile(u))
	}
	return res, nil
}

func (s *adminService) findUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, dto.NewNotFoundError("user not found")
	}
	return user, nil
}

func (s *adminService) UpdateAiLimit(ctx context.Context, userId uuid.UUID, req *dto.UpdateAiLimitRequest) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	user.AiDailyLimitOverride = req.DailyLimit
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("ADMIN", "daily limit override changed", map[string]interface{}{"user_id": userId.String(), "override": req.DailyLimit})
	return userToProfile(user), nil
}

func (s *adminService) ResetAiUsage(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	user.AiDailyUsage = 0
	user.AiDailyUsageLastReset = time.Now()
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	return userToProfile(user), nil
}

func (s *adminService) GetAllPlans(ctx context.Context) ([]*dto.AdminPlanResponse, error) {
	plans, err := s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindAllPlans(ctx,
		specification.OrderBy{Field: "sort_order"},
	)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.AdminPlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, adminPlanResponse(p))
	}
	return res, nil
}

// UpdatePlan edits a plan and drops the cached public catalogue.
func (s *adminService) UpdatePlan(ctx context.Context, id uuid.UUID, req *dto.AdminUpdatePlanRequest) (*dto.AdminPlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, dto.NewNotFoundError("plan not found")
	}
	if plan.Slug == entity.PlanSlugFree && req.Price > 0 {
		return nil, dto.NewValidationError("the free plan cannot have a price")
	}

	plan.Name = strings.TrimSpace(req.Name)
	plan.Tagline = req.Tagline
	plan.Price = req.Price
	plan.AiChatDailyLimit = req.AiChatDailyLimit
	plan.Features = req.Features
	plan.IsMostPopular = req.IsMostPopular
	plan.IsActive = req.IsActive
	plan.SortOrder = req.SortOrder
	if err := uow.SubscriptionRepository().UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.planService.InvalidateCatalogue(ctx)
	return adminPlanResponse(plan), nil
}

// GrantSubscription activates a plan for a user without payment, e.g. for support cases.
func (s *adminService) GrantSubscription(ctx context.Context, req *dto.AdminGrantSubscriptionRequest) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findUser(ctx, uow, req.UserId); err != nil {
		return nil, err
	}
	plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: req.PlanId})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, dto.NewNotFoundError("plan not found")
	}

	now := time.Now()
	sub := &entity.UserSubscription{
		UserId:             req.UserId,
		PlanId:             plan.Id,
		Status:             entity.SubscriptionStatusActive,
		PaymentStatus:      entity.PaymentStatusPaid,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, req.Days),
	}
	if err := uow.SubscriptionRepository().CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info("ADMIN", "subscription granted", map[string]interface{}{"user_id": req.UserId.String(), "plan": plan.Slug, "days": req.Days})

	id := sub.Id
	end := sub.CurrentPeriodEnd
	return &dto.SubscriptionStatusResponse{
		SubscriptionId:   &id,
		PlanName:         plan.Name,
		PlanSlug:         plan.Slug,
		Status:           string(sub.Status),
		CurrentPeriodEnd: &end,
		IsActive:         true,
	}, nil
}

func adminPlanResponse(p *entity.SubscriptionPlan) *dto.AdminPlanResponse {
	return &dto.AdminPlanResponse{
		PlanResponse: *planToResponse(p),
		IsActive:     p.IsActive,
		TaxRate:      p.TaxRate,
		SortOrder:    p.SortOrder,
	}
}
