package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/internal/testutil"
	"ai-fitcoach-be/pkg/access"
	"ai-fitcoach-be/pkg/events"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test"

type fakeGateway struct {
	err  error
	reqs []*snap.Request
}

func (g *fakeGateway) CreateTransaction(req *snap.Request) (*snap.Response, error) {
	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return nil, g.err
	}
	return &snap.Response{Token: "snap-token", RedirectURL: "https://pay.example/snap"}, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) SendSubscriptionActivated(toEmail, planName string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail+":"+planName)
	return nil
}

type paymentFixture struct {
	factory unitofwork.RepositoryFactory
	gateway *fakeGateway
	pub     *testutil.RecordingPublisher
	mail    *recordingMailer
	svc     IPaymentService
	pro     *entity.SubscriptionPlan
	caller  dto.Caller
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(testutil.NewTestDB(t))
	f := &paymentFixture{
		factory: factory,
		gateway: &fakeGateway{},
		pub:     &testutil.RecordingPublisher{},
		mail:    &recordingMailer{},
		caller:  dto.Caller{UserId: uuid.New(), Email: "lifter@example.com", Role: "user"},
	}
	testutil.SeedPlan(t, factory, entity.PlanSlugFree, 5, 0)
	f.pro = testutil.SeedPlan(t, factory, entity.PlanSlugPro, -1, 99000)
	f.svc = NewPaymentService(factory, access.NewVerifier(5), f.gateway, f.pub, f.mail, logger.NewNopLogger(), testServerKey, "http://localhost:5173")
	return f
}

func (f *paymentFixture) notify(status string, subId uuid.UUID) *dto.MidtransWebhookRequest {
	req := &dto.MidtransWebhookRequest{
		TransactionStatus: status,
		OrderId:           subId.String(),
		StatusCode:        "200",
		GrossAmount:       "99000.00",
		TransactionId:     "tx-1",
	}
	req.SignatureKey = NotificationSignature(req.OrderId, req.StatusCode, req.GrossAmount, testServerKey)
	return req
}

func TestCheckoutCreatesPendingSubscription(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateSubscription(ctx, f.caller, &dto.CheckoutRequest{PlanId: f.pro.Id})
	require.NoError(t, err)
	assert.Equal(t, "snap-token", res.SnapToken)
	require.Len(t, f.gateway.reqs, 1)
	assert.Equal(t, res.SubscriptionId.String(), f.gateway.reqs[0].TransactionDetails.OrderID)
	assert.Equal(t, int64(99000), f.gateway.reqs[0].TransactionDetails.GrossAmt)

	sub, err := f.factory.NewUnitOfWork(ctx).SubscriptionRepository().FindOneSubscription(ctx, specification.ByID{ID: res.SubscriptionId})
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusInactive, sub.Status)
	assert.Equal(t, entity.PaymentStatusPending, sub.PaymentStatus)

	status, err := f.svc.GetSubscriptionStatus(ctx, f.caller)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Equal(t, entity.PlanSlugFree, status.PlanSlug)
}

func TestCheckoutRejections(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	var appErr *dto.AppError

	_, err := f.svc.CreateSubscription(ctx, dto.GuestCaller(), &dto.CheckoutRequest{PlanId: f.pro.Id})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindAuthentication, appErr.Kind)

	_, err = f.svc.CreateSubscription(ctx, f.caller, &dto.CheckoutRequest{PlanId: uuid.New()})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindNotFound, appErr.Kind)

	f.gateway.err = errors.New("connection refused")
	_, err = f.svc.CreateSubscription(ctx, f.caller, &dto.CheckoutRequest{PlanId: f.pro.Id})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindNetwork, appErr.Kind)
}

func TestWebhookActivatesAndDeactivates(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateSubscription(ctx, f.caller, &dto.CheckoutRequest{PlanId: f.pro.Id})
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleNotification(ctx, f.notify("pending", res.SubscriptionId)))
	assert.Empty(t, f.pub.Types())

	require.NoError(t, f.svc.HandleNotification(ctx, f.notify("settlement", res.SubscriptionId)))
	assert.Equal(t, []string{events.TypeSubscriptionActivated}, f.pub.Types())
	assert.Equal(t, []string{"lifter@example.com:" + entity.PlanSlugPro}, f.mail.sent)

	status, err := f.svc.GetSubscriptionStatus(ctx, f.caller)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	assert.Equal(t, entity.PlanSlugPro, status.PlanSlug)

	// replayed notification is idempotent
	require.NoError(t, f.svc.HandleNotification(ctx, f.notify("settlement", res.SubscriptionId)))
	assert.Len(t, f.pub.Types(), 1)

	require.NoError(t, f.svc.HandleNotification(ctx, f.notify("expire", res.SubscriptionId)))
	status, err = f.svc.GetSubscriptionStatus(ctx, f.caller)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t)
	req := f.notify("settlement", uuid.New())
	req.SignatureKey = "forged"

	err := f.svc.HandleNotification(context.Background(), req)
	var appErr *dto.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindAuthorization, appErr.Kind)
}

func TestCancelKeepsAccessUntilPeriodEnd(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	var appErr *dto.AppError
	err := f.svc.CancelSubscription(ctx, f.caller)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindNotFound, appErr.Kind)

	testutil.SeedSubscription(t, f.factory, f.caller.UserId, f.pro.Id)
	require.NoError(t, f.svc.CancelSubscription(ctx, f.caller))

	status, err := f.svc.GetSubscriptionStatus(ctx, f.caller)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	assert.Equal(t, string(entity.SubscriptionStatusCanceled), status.Status)
}
