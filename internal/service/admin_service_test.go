package service

import (
	"context"
	"testing"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/internal/testutil"
	"ai-fitcoach-be/pkg/access"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	factory  unitofwork.RepositoryFactory
	verifier *access.Verifier
	admin    IAdminService
	users    IUserService
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(testutil.NewTestDB(t))
	verifier := access.NewVerifier(10)
	log := logger.NewNopLogger()
	plans := NewPlanService(factory, verifier, nil, log)
	return &adminFixture{
		factory:  factory,
		verifier: verifier,
		admin:    NewAdminService(factory, plans, log),
		users:    NewUserService(factory, verifier),
	}
}

func (f *adminFixture) signUp(t *testing.T, email string) dto.Caller {
	t.Helper()
	caller := dto.Caller{UserId: uuid.New(), Email: email, Role: "user"}
	_, err := f.users.GetProfile(context.Background(), caller)
	require.NoError(t, err)
	return caller
}

func TestUserProfile(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.users.GetProfile(ctx, dto.GuestCaller())
	var appErr *dto.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindAuthentication, appErr.Kind)

	caller := f.signUp(t, "lifter@example.com")
	again, err := f.users.GetProfile(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, caller.UserId, again.Id)
	assert.Equal(t, "lifter@example.com", again.Email)
	assert.Nil(t, again.AiDailyLimitOverride)
}

func TestAdminUserManagement(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	alice := f.signUp(t, "alice@example.com")
	f.signUp(t, "bob@example.com")

	all, err := f.admin.GetAllUsers(ctx, &dto.AdminUserListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := f.admin.GetAllUsers(ctx, &dto.AdminUserListQuery{Search: "ALICE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, alice.UserId, found[0].Id)

	limit := 50
	updated, err := f.admin.UpdateAiLimit(ctx, alice.UserId, &dto.UpdateAiLimitRequest{DailyLimit: &limit})
	require.NoError(t, err)
	require.NotNil(t, updated.AiDailyLimitOverride)
	assert.Equal(t, 50, *updated.AiDailyLimitOverride)

	uow := f.factory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: alice.UserId})
	require.NoError(t, err)
	ent, err := f.verifier.ResolveEntitlement(ctx, uow, user)
	require.NoError(t, err)
	assert.Equal(t, 50, ent.DailyLimit)

	cleared, err := f.admin.UpdateAiLimit(ctx, alice.UserId, &dto.UpdateAiLimitRequest{})
	require.NoError(t, err)
	assert.Nil(t, cleared.AiDailyLimitOverride)

	require.NoError(t, f.verifier.IncrementUserUsage(ctx, uow, alice.UserId))
	reset, err := f.admin.ResetAiUsage(ctx, alice.UserId)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.AiDailyUsage)

	_, err = f.admin.ResetAiUsage(ctx, uuid.New())
	var appErr *dto.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindNotFound, appErr.Kind)
}

func TestAdminPlanManagement(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	free := testutil.SeedPlan(t, f.factory, entity.PlanSlugFree, 10, 0)
	pro := testutil.SeedPlan(t, f.factory, entity.PlanSlugPro, -1, 99000)

	_, err := f.admin.UpdatePlan(ctx, free.Id, &dto.AdminUpdatePlanRequest{Name: "Free", Price: 10})
	var appErr *dto.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindValidation, appErr.Kind)

	updated, err := f.admin.UpdatePlan(ctx, pro.Id, &dto.AdminUpdatePlanRequest{
		Name:             "Pro Coach",
		Price:            120000,
		AiChatDailyLimit: 200,
		Features:         []string{"Unlimited plans"},
		IsActive:         false,
		SortOrder:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pro Coach", updated.Name)
	assert.False(t, updated.IsActive)

	all, err := f.admin.GetAllPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := NewPlanService(f.factory, f.verifier, nil, logger.NewNopLogger()).GetActivePlans(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, entity.PlanSlugFree, active[0].Slug)
}

func TestAdminGrantSubscription(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	testutil.SeedPlan(t, f.factory, entity.PlanSlugFree, 10, 0)
	pro := testutil.SeedPlan(t, f.factory, entity.PlanSlugPro, -1, 99000)
	caller := f.signUp(t, "grant@example.com")

	_, err := f.admin.GrantSubscription(ctx, &dto.AdminGrantSubscriptionRequest{UserId: uuid.New(), PlanId: pro.Id, Days: 30})
	var appErr *dto.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindNotFound, appErr.Kind)

	res, err := f.admin.GrantSubscription(ctx, &dto.AdminGrantSubscriptionRequest{UserId: caller.UserId, PlanId: pro.Id, Days: 30})
	require.NoError(t, err)
	assert.True(t, res.IsActive)
	assert.Equal(t, entity.PlanSlugPro, res.PlanSlug)

	status, err := NewPlanService(f.factory, f.verifier, nil, logger.NewNopLogger()).GetUserUsageStatus(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanSlugPro, status.Plan.Slug)
	assert.Equal(t, -1, status.Daily.AiChat.Limit)
	assert.False(t, status.UpgradeAvailable)
}
