// Package access resolves a user's plan and enforces the daily coach message quota.
package access

import (
	"context"
	"fmt"
	"time"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Verifier handles plan resolution and usage limits.
type Verifier struct {
	freeDailyLimit int
	now            func() time.Time
}

func NewVerifier(freeDailyLimit int) *Verifier {
	return &Verifier{
		freeDailyLimit: freeDailyLimit,
		now:            time.Now,
	}
}

// WithClock swaps the time source. Used by tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// Entitlement is the plan a user is currently entitled to plus the effective daily limit.
type Entitlement struct {
	Plan         *entity.SubscriptionPlan
	Subscription *entity.UserSubscription // nil on the free tier
	DailyLimit   int                      // -1 = unlimited
}

// EnsureUser returns the local user row for an authenticated caller, creating it on first sight.
func (v *Verifier) EnsureUser(ctx context.Context, uow unitofwork.UnitOfWork, caller dto.Caller) (*entity.User, error) {
	repo := uow.UserRepository()
	user, err := repo.FindOne(ctx, specification.ByID{ID: caller.UserId})
	if err != nil {
		return nil, err
	}

	role := entity.UserRole(caller.Role)
	if role != entity.UserRoleAdmin {
		role = entity.UserRoleUser
	}

	if user == nil {
		user = &entity.User{
			Id:                    caller.UserId,
			Email:                 caller.Email,
			Role:                  role,
			AiDailyUsageLastReset: v.now(),
		}
		if err := repo.Create(ctx, user); err != nil {
			// a concurrent request may have provisioned the same user
			existing, findErr := repo.FindOne(ctx, specification.ByID{ID: caller.UserId})
			if findErr != nil || existing == nil {
				return nil, fmt.Errorf("provision user: %w", err)
			}
			return existing, nil
		}
		return user, nil
	}

	if (caller.Email != "" && user.Email != caller.Email) || user.Role != role {
		if caller.Email != "" {
			user.Email = caller.Email
		}
		user.Role = role
		if err := repo.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ResolveEntitlement picks the subscription that currently grants access, newest first,
// falling back to the free plan row and finally to the configured free limit.
func (v *Verifier) ResolveEntitlement(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (*Entitlement, error) {
	now := v.now()
	subs, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	ent := &Entitlement{}
	for _, sub := range subs {
		if !sub.Grants(now) {
			continue
		}
		plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: sub.PlanId})
		if err != nil {
			return nil, err
		}
		if plan != nil {
			ent.Plan = plan
			ent.Subscription = sub
			break
		}
	}

	if ent.Plan == nil {
		plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.BySlug{Slug: entity.PlanSlugFree})
		if err != nil {
			return nil, err
		}
		if plan == nil {
			plan = &entity.SubscriptionPlan{
				Name:             "Free",
				Slug:             entity.PlanSlugFree,
				BillingPeriod:    entity.BillingPeriodMonthly,
				AiChatDailyLimit: v.freeDailyLimit,
				IsActive:         true,
			}
		}
		ent.Plan = plan
	}

	ent.DailyLimit = ent.Plan.AiChatDailyLimit
	if user.AiDailyLimitOverride != nil {
		ent.DailyLimit = *user.AiDailyLimitOverride
	}
	return ent, nil
}

// resetIfNewDay zeroes the counter when the last reset happened on a previous calendar day.
func (v *Verifier) resetIfNewDay(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) error {
	now := v.now()
	last := user.AiDailyUsageLastReset.In(now.Location())
	if now.Year() == last.Year() && now.YearDay() == last.YearDay() {
		return nil
	}
	user.AiDailyUsage = 0
	user.AiDailyUsageLastReset = now
	return uow.UserRepository().Update(ctx, user)
}

func (v *Verifier) nextReset() time.Time {
	now := v.now()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// VerifyAccessAndLimits returns *dto.LimitExceededError when the user has no messages left today.
func (v *Verifier) VerifyAccessAndLimits(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (*Entitlement, error) {
	ent, err := v.ResolveEntitlement(ctx, uow, user)
	if err != nil {
		return nil, err
	}
	if err := v.resetIfNewDay(ctx, uow, user); err != nil {
		return nil, err
	}

	if ent.DailyLimit >= 0 && user.AiDailyUsage >= ent.DailyLimit {
		return ent, &dto.LimitExceededError{
			Limit:      ent.DailyLimit,
			Used:       user.AiDailyUsage,
			ResetAfter: v.nextReset(),
		}
	}
	return ent, nil
}

// IncrementUserUsage bumps the daily counter. Call it inside the transaction that persists the reply.
func (v *Verifier) IncrementUserUsage(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userId)
	}
	user.AiDailyUsage++
	return uow.UserRepository().Update(ctx, user)
}

// UsageStatus reports the plan and today's chat usage without consuming anything.
func (v *Verifier) UsageStatus(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (*dto.UsageStatusResponse, error) {
	ent, err := v.ResolveEntitlement(ctx, uow, user)
	if err != nil {
		return nil, err
	}
	if err := v.resetIfNewDay(ctx, uow, user); err != nil {
		return nil, err
	}

	resetsAt := v.nextReset()
	return &dto.UsageStatusResponse{
		Plan: dto.PlanInfo{
			Id:   ent.Plan.Id,
			Name: ent.Plan.Name,
			Slug: ent.Plan.Slug,
		},
		Daily: dto.DailyLimits{
			AiChat: dto.UsageLimit{
				Used:     user.AiDailyUsage,
				Limit:    ent.DailyLimit,
				CanUse:   ent.DailyLimit < 0 || user.AiDailyUsage < ent.DailyLimit,
				ResetsAt: &resetsAt,
			},
		},
		UpgradeAvailable: ent.Plan.Slug == entity.PlanSlugFree,
	}, nil
}
