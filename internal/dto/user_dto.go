package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id                   uuid.UUID `json:"id"`
	Email                string    `json:"email"`
	Role                 string    `json:"role"`
	AiDailyUsage         int       `json:"ai_daily_usage"`
	AiDailyLimitOverride *int      `json:"ai_daily_limit_override,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

type AdminUserListQuery struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search string `query:"search"`
}

// UpdateAiLimitRequest sets a per-user daily limit; null clears the override.
type UpdateAiLimitRequest struct {
	DailyLimit *int `json:"daily_limit" validate:"omitempty,min=-1"`
}

type AdminUpdatePlanRequest struct {
	Name             string   `json:"name" validate:"required,max=100"`
	Tagline          string   `json:"tagline" validate:"max=255"`
	Price            float64  `json:"price" validate:"min=0"`
	AiChatDailyLimit int      `json:"ai_chat_daily_limit" validate:"min=-1"`
	Features         []string `json:"features"`
	IsMostPopular    bool     `json:"is_most_popular"`
	IsActive         bool     `json:"is_active"`
	SortOrder        int      `json:"sort_order"`
}

type AdminPlanResponse struct {
	PlanResponse
	IsActive  bool    `json:"is_active"`
	TaxRate   float64 `json:"tax_rate"`
	SortOrder int     `json:"sort_order"`
}

type AdminGrantSubscriptionRequest struct {
	UserId uuid.UUID `json:"user_id" validate:"required"`
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
	Days   int       `json:"days" validate:"required,min=1,max=3660"`
}
