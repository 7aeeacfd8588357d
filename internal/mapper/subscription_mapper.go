package mapper

import (
	"encoding/json"

	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.SubscriptionPlan) *entity.SubscriptionPlan {
	if p == nil {
		return nil
	}
	var features []string
	if len(p.Features) > 0 {
		// malformed rows degrade to an empty feature list
		_ = json.Unmarshal(p.Features, &features)
	}
	return &entity.SubscriptionPlan{
		Id:               p.Id,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		Tagline:          p.Tagline,
		Price:            p.Price,
		TaxRate:          p.TaxRate,
		BillingPeriod:    entity.BillingPeriod(p.BillingPeriod),
		AiChatDailyLimit: p.AiChatDailyLimit,
		Features:         features,
		IsMostPopular:    p.IsMostPopular,
		IsActive:         p.IsActive,
		SortOrder:        p.SortOrder,
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.SubscriptionPlan) *model.SubscriptionPlan {
	if p == nil {
		return nil
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	raw, _ := json.Marshal(features)
	return &model.SubscriptionPlan{
		Id:               p.Id,
		Name:             p.Name,
		Slug:             p.Slug,
		Description:      p.Description,
		Tagline:          p.Tagline,
		Price:            p.Price,
		TaxRate:          p.TaxRate,
		BillingPeriod:    string(p.BillingPeriod),
		AiChatDailyLimit: p.AiChatDailyLimit,
		Features:         datatypes.JSON(raw),
		IsMostPopular:    p.IsMostPopular,
		IsActive:         p.IsActive,
		SortOrder:        p.SortOrder,
	}
}

func (m *SubscriptionMapper) PlansToEntities(models []*model.SubscriptionPlan) []*entity.SubscriptionPlan {
	out := make([]*entity.SubscriptionPlan, len(models))
	for i, p := range models {
		out[i] = m.PlanToEntity(p)
	}
	return out
}

func (m *SubscriptionMapper) SubscriptionToEntity(s *model.UserSubscription) *entity.UserSubscription {
	if s == nil {
		return nil
	}
	return &entity.UserSubscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanId:                s.PlanId,
		Status:                entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart:    s.CurrentPeriodStart,
		CurrentPeriodEnd:      s.CurrentPeriodEnd,
		PaymentStatus:         entity.PaymentStatus(s.PaymentStatus),
		MidtransTransactionId: s.MidtransTransactionId,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToModel(s *entity.UserSubscription) *model.UserSubscription {
	if s == nil {
		return nil
	}
	return &model.UserSubscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanId:                s.PlanId,
		Status:                string(s.Status),
		CurrentPeriodStart:    s.CurrentPeriodStart,
		CurrentPeriodEnd:      s.CurrentPeriodEnd,
		PaymentStatus:         string(s.PaymentStatus),
		MidtransTransactionId: s.MidtransTransactionId,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionsToEntities(models []*model.UserSubscription) []*entity.UserSubscription {
	out := make([]*entity.UserSubscription, len(models))
	for i, s := range models {
		out[i] = m.SubscriptionToEntity(s)
	}
	return out
}
