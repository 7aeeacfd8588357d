// DTOs for plans, usage limits and subscription flows
package dto

import (
	"time"

	"github.com/google/uuid"
)

// UsageLimit represents a single limit status
type UsageLimit struct {
	Used     int        `json:"used"`
	Limit    int        `json:"limit"` // -1 = unlimited, 0 = disabled
	CanUse   bool       `json:"can_use"`
	ResetsAt *time.Time `json:"resets_at,omitempty"`
}

type DailyLimits struct {
	AiChat UsageLimit `json:"ai_chat"`
}

// UsageStatusResponse is returned by GET /api/user/usage-status
type UsageStatusResponse struct {
	Plan             PlanInfo    `json:"plan"`
	Daily            DailyLimits `json:"daily"`
	UpgradeAvailable bool        `json:"upgrade_available"`
}

type PlanInfo struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// PlanResponse is returned by GET /api/plans (public)
type PlanResponse struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Tagline       string    `json:"tagline"`
	Price         float64   `json:"price"`
	BillingPeriod string    `json:"billing_period"`
	IsMostPopular bool      `json:"is_most_popular"`
	AiChatDaily   int       `json:"ai_chat_daily"`
	Features      []string  `json:"features"`
}

type CheckoutRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

type CheckoutResponse struct {
	SubscriptionId  uuid.UUID `json:"subscription_id"`
	SnapToken       string    `json:"snap_token"`
	SnapRedirectUrl string    `json:"snap_redirect_url"`
}

// MidtransWebhookRequest is the subset of the Midtrans notification body we act on.
type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	TransactionId     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

type SubscriptionStatusResponse struct {
	SubscriptionId   *uuid.UUID `json:"subscription_id,omitempty"`
	PlanName         string     `json:"plan_name"`
	PlanSlug         string     `json:"plan_slug"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	IsActive         bool       `json:"is_active"`
}
