package service

import (
	"context"
	"testing"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/internal/testutil"
	"ai-fitcoach-be/pkg/access"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCatalogueWithoutCache(t *testing.T) {
	factory := unitofwork.NewRepositoryFactory(testutil.NewTestDB(t))
	testutil.SeedPlan(t, factory, entity.PlanSlugPro, -1, 99000)
	testutil.SeedPlan(t, factory, entity.PlanSlugFree, 5, 0)

	svc := NewPlanService(factory, access.NewVerifier(10), nil, logger.NewNopLogger())
	plans, err := svc.GetActivePlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, entity.PlanSlugFree, plans[0].Slug)
	assert.Equal(t, -1, plans[1].AiChatDaily)

	// no-op without redis
	svc.InvalidateCatalogue(context.Background())
}

func TestUsageStatus(t *testing.T) {
	factory := unitofwork.NewRepositoryFactory(testutil.NewTestDB(t))
	svc := NewPlanService(factory, access.NewVerifier(7), nil, logger.NewNopLogger())
	ctx := context.Background()

	_, err := svc.GetUserUsageStatus(ctx, dto.GuestCaller())
	var appErr *dto.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindAuthentication, appErr.Kind)

	status, err := svc.GetUserUsageStatus(ctx, dto.Caller{UserId: uuid.New(), Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, entity.PlanSlugFree, status.Plan.Slug)
	assert.Equal(t, 7, status.Daily.AiChat.Limit)
	assert.Equal(t, 0, status.Daily.AiChat.Used)
	assert.True(t, status.Daily.AiChat.CanUse)
	assert.True(t, status.UpgradeAvailable)
}
