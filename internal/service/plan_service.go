// Service for the public plan catalogue and per-user usage status
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/pkg/access"

	"github.com/redis/go-redis/v9"
)

const (
	planCatalogueCacheKey = "plans:active:v1"
	planCatalogueCacheTTL = 10 * time.Minute
)

type PlanService interface {
	// Public
	GetActivePlans(ctx context.Context) ([]*dto.PlanResponse, error)
	InvalidateCatalogue(ctx context.Context)

	// User
	GetUserUsageStatus(ctx context.Context, caller dto.Caller) (*dto.UsageStatusResponse, error)
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	verifier   *access.Verifier
	rdb        *redis.Client // optional
	logger     logger.ILogger
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory, verifier *access.Verifier, rdb *redis.Client, log logger.ILogger) PlanService {
	return &planService{
		uowFactory: uowFactory,
		verifier:   verifier,
		rdb:        rdb,
		logger:     log,
	}
}

// GetActivePlans reads through the Redis cache when one is configured.
func (s *planService) GetActivePlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, planCatalogueCacheKey).Bytes()
		if err == nil {
			var cached []*dto.PlanResponse
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("PLAN", "plan cache read failed", map[string]interface{}{"error": err.Error()})
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	plans, err := uow.SubscriptionRepository().FindAllPlans(ctx,
		specification.ActivePlans{},
		specification.OrderBy{Field: "sort_order"},
		specification.OrderBy{Field: "price"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, planToResponse(p))
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(res); err == nil {
			if err := s.rdb.Set(ctx, planCatalogueCacheKey, payload, planCatalogueCacheTTL).Err(); err != nil {
				s.logger.Warn("PLAN", "plan cache write failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	return res, nil
}

func (s *planService) InvalidateCatalogue(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, planCatalogueCacheKey).Err(); err != nil {
		s.logger.Warn("PLAN", "plan cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *planService) GetUserUsageStatus(ctx context.Context, caller dto.Caller) (*dto.UsageStatusResponse, error) {
	if caller.IsGuest {
		return nil, dto.NewAuthenticationError("login required")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.verifier.EnsureUser(ctx, uow, caller)
	if err != nil {
		return nil, err
	}
	return s.verifier.UsageStatus(ctx, uow, user)
}

func planToResponse(p *entity.SubscriptionPlan) *dto.PlanResponse {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return &dto.PlanResponse{
		Id:            p.Id,
		Name:          p.Name,
		Slug:          p.Slug,
		Tagline:       p.Tagline,
		Price:         p.Price,
		BillingPeriod: string(p.BillingPeriod),
		IsMostPopular: p.IsMostPopular,
		AiChatDaily:   p.AiChatDailyLimit,
		Features:      features,
	}
}
