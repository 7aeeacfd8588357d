package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type PaymentStatus string
type BillingPeriod string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"

	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"

	PlanSlugFree = "free"
	PlanSlugPro  = "pro"
)

type SubscriptionPlan struct {
	Id            uuid.UUID
	Name          string
	Slug          string
	Description   string
	Tagline       string
	Price         float64
	TaxRate       float64
	BillingPeriod BillingPeriod
	// Max AI coach messages per day, 0 = disabled, -1 = unlimited
	AiChatDailyLimit int
	Features         []string
	IsMostPopular    bool
	IsActive         bool
	SortOrder        int
}

type UserSubscription struct {
	Id                    uuid.UUID
	UserId                uuid.UUID
	PlanId                uuid.UUID
	Status                SubscriptionStatus
	CurrentPeriodStart    time.Time
	CurrentPeriodEnd      time.Time
	PaymentStatus         PaymentStatus
	MidtransTransactionId *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Grants reports whether the subscription currently entitles the user to its plan.
func (s *UserSubscription) Grants(now time.Time) bool {
	if !s.CurrentPeriodEnd.After(now) {
		return false
	}
	switch {
	case s.Status == SubscriptionStatusActive:
		return true
	case s.Status == SubscriptionStatusCanceled:
		// access retained until the period ends
		return true
	case s.PaymentStatus == PaymentStatusPaid:
		return true
	}
	return false
}
