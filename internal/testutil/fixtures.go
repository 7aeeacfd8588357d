package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/pkg/events"
	"ai-fitcoach-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// SeedPlan inserts a plan with the given slug and daily limit.
func SeedPlan(t *testing.T, f unitofwork.RepositoryFactory, slug string, dailyLimit int, price float64) *entity.SubscriptionPlan {
	t.Helper()
	plan := &entity.SubscriptionPlan{
		Name:             slug,
		Slug:             slug,
		Price:            price,
		BillingPeriod:    entity.BillingPeriodMonthly,
		AiChatDailyLimit: dailyLimit,
		Features:         []string{"AI coach"},
		IsActive:         true,
	}
	require.NoError(t, f.NewUnitOfWork(context.Background()).SubscriptionRepository().CreatePlan(context.Background(), plan))
	return plan
}

// SeedSubscription gives the user an active subscription to plan for the next 30 days.
func SeedSubscription(t *testing.T, f unitofwork.RepositoryFactory, userId, planId uuid.UUID) *entity.UserSubscription {
	t.Helper()
	now := time.Now()
	sub := &entity.UserSubscription{
		UserId:             userId,
		PlanId:             planId,
		Status:             entity.SubscriptionStatusActive,
		PaymentStatus:      entity.PaymentStatusPaid,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, 30),
	}
	require.NoError(t, f.NewUnitOfWork(context.Background()).SubscriptionRepository().CreateSubscription(context.Background(), sub))
	return sub
}

// FakeLLM returns Reply (or Err) and records every history it was given.
type FakeLLM struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Calls   [][]llm.Message
	Started chan struct{} // optional, signalled when Chat begins
	Release chan struct{} // optional, Chat blocks until closed
}

func (f *FakeLLM) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, history)
	f.mu.Unlock()
	if f.Started != nil {
		f.Started <- struct{}{}
	}
	if f.Release != nil {
		select {
		case <-f.Release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

func (f *FakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (f *FakeLLM) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// RecordingPublisher captures published events.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, e)
	return nil
}

func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.EventType()
	}
	return out
}
