package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/pkg/mailer"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/pkg/access"
	"ai-fitcoach-be/pkg/events"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapGateway is the part of the Midtrans Snap client the checkout flow needs.
type SnapGateway interface {
	CreateTransaction(req *snap.Request) (*snap.Response, error)
}

type midtransSnapGateway struct {
	client snap.Client
}

func NewMidtransSnapGateway(serverKey string, isProduction bool) SnapGateway {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}
	g := &midtransSnapGateway{}
	g.client.New(serverKey, env)
	return g
}

func (g *midtransSnapGateway) CreateTransaction(req *snap.Request) (*snap.Response, error) {
	resp, midErr := g.client.CreateTransaction(req)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans: %s", midErr.GetMessage())
	}
	return resp, nil
}

type IPaymentService interface {
	CreateSubscription(ctx context.Context, caller dto.Caller, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
	GetSubscriptionStatus(ctx context.Context, caller dto.Caller) (*dto.SubscriptionStatusResponse, error)
	CancelSubscription(ctx context.Context, caller dto.Caller) error
}

type paymentService struct {
	uowFactory unitofwork.RepositoryFactory
	verifier   *access.Verifier
	gateway    SnapGateway
	publisher  events.Publisher
	mailer     mailer.IEmailService
	logger     logger.ILogger
	serverKey  string
	clientURL  string
	now        func() time.Time
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	verifier *access.Verifier,
	gateway SnapGateway,
	publisher events.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
	serverKey string,
	clientURL string,
) IPaymentService {
	return &paymentService{
		uowFactory: uowFactory,
		verifier:   verifier,
		gateway:    gateway,
		publisher:  publisher,
		mailer:     emailService,
		logger:     log,
		serverKey:  serverKey,
		clientURL:  clientURL,
		now:        time.Now,
	}
}

func periodEnd(start time.Time, period entity.BillingPeriod) time.Time {
	if period == entity.BillingPeriodYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

func (s *paymentService) CreateSubscription(ctx context.Context, caller dto.Caller, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if caller.IsGuest {
		return nil, dto.NewAuthenticationError("login required")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := s.verifier.EnsureUser(ctx, uow, caller)
	if err != nil {
		return nil, err
	}

	plan, err := uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: req.PlanId}, specification.ActivePlans{})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, dto.NewNotFoundError("plan not found")
	}
	if plan.Price <= 0 {
		return nil, dto.NewValidationError("free plans need no checkout")
	}

	now := s.now()
	sub := &entity.UserSubscription{
		Id:                 uuid.New(),
		UserId:             user.Id,
		PlanId:             plan.Id,
		Status:             entity.SubscriptionStatusInactive,
		PaymentStatus:      entity.PaymentStatusPending,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   periodEnd(now, plan.BillingPeriod),
	}
	if err := uow.SubscriptionRepository().CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	grossAmount := int64(plan.Price + plan.Price*plan.TaxRate)
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  sub.Id.String(),
			GrossAmt: grossAmount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/app?payment=success", s.clientURL),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    plan.Id.String(),
				Price: grossAmount,
				Qty:   1,
				Name:  plan.Name,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, err := s.gateway.CreateTransaction(snapReq)
	if err != nil {
		sub.PaymentStatus = entity.PaymentStatusFailed
		if updErr := uow.SubscriptionRepository().UpdateSubscription(ctx, sub); updErr != nil {
			s.logger.Error("PAYMENT", "failed to mark checkout as failed", map[string]interface{}{"subscription_id": sub.Id.String(), "error": updErr.Error()})
		}
		return nil, dto.NewNetworkError("payment gateway unavailable", err)
	}

	s.logger.Info("PAYMENT", "checkout created", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         user.Id.String(),
		"plan":            plan.Slug,
	})

	return &dto.CheckoutResponse{
		SubscriptionId:  sub.Id,
		SnapToken:       snapResp.Token,
		SnapRedirectUrl: snapResp.RedirectURL,
	}, nil
}

// NotificationSignature is SHA512(order_id + status_code + gross_amount + server_key), hex encoded.
func NotificationSignature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if s.serverKey == "" {
		return dto.NewInternalError(fmt.Errorf("midtrans server key not configured"))
	}

	expected := NotificationSignature(req.OrderId, req.StatusCode, req.GrossAmount, s.serverKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(req.SignatureKey)) != 1 {
		s.logger.Warn("WEBHOOK", "signature mismatch", map[string]interface{}{"order_id": req.OrderId})
		return dto.NewAuthorizationError("invalid signature")
	}

	subId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return dto.NewValidationError("invalid order id")
	}

	var newStatus entity.SubscriptionStatus
	var newPaymentStatus entity.PaymentStatus
	switch req.TransactionStatus {
	case "capture", "settlement":
		if req.FraudStatus == "challenge" {
			// held for manual review, a later notification settles it
			return nil
		}
		newStatus = entity.SubscriptionStatusActive
		newPaymentStatus = entity.PaymentStatusPaid
	case "deny", "cancel", "expire":
		newStatus = entity.SubscriptionStatusInactive
		newPaymentStatus = entity.PaymentStatusFailed
	case "pending":
		return nil
	default:
		s.logger.Warn("WEBHOOK", "unknown transaction status", map[string]interface{}{"order_id": req.OrderId, "status": req.TransactionStatus})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx, specification.ByID{ID: subId})
	if err != nil {
		return err
	}
	if sub == nil {
		return dto.NewNotFoundError("subscription not found")
	}

	if sub.Status == newStatus && sub.PaymentStatus == newPaymentStatus {
		return nil
	}

	s.logger.Info("WEBHOOK", "subscription state transition", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"from":            fmt.Sprintf("%s/%s", sub.Status, sub.PaymentStatus),
		"to":              fmt.Sprintf("%s/%s", newStatus, newPaymentStatus),
	})

	activated := newStatus == entity.SubscriptionStatusActive
	var plan *entity.SubscriptionPlan
	if activated {
		plan, err = uow.SubscriptionRepository().FindOnePlan(ctx, specification.ByID{ID: sub.PlanId})
		if err != nil {
			return err
		}
		if plan == nil {
			return dto.NewNotFoundError("plan not found")
		}
		now := s.now()
		sub.CurrentPeriodStart = now
		sub.CurrentPeriodEnd = periodEnd(now, plan.BillingPeriod)
	}
	if txId := req.TransactionId; txId != "" {
		sub.MidtransTransactionId = &txId
	}
	sub.Status = newStatus
	sub.PaymentStatus = newPaymentStatus

	if err := uow.SubscriptionRepository().UpdateSubscription(ctx, sub); err != nil {
		return err
	}

	var user *entity.User
	if activated {
		user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.UserId})
		if err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if activated {
		s.afterActivation(ctx, sub, plan, user)
	}
	return nil
}

func (s *paymentService) afterActivation(ctx context.Context, sub *entity.UserSubscription, plan *entity.SubscriptionPlan, user *entity.User) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.New(events.TypeSubscriptionActivated, map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"user_id":         sub.UserId.String(),
			"plan_slug":       plan.Slug,
			"period_end":      sub.CurrentPeriodEnd,
		})); err != nil {
			s.logger.Warn("EVENTS", "failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}

	if s.mailer != nil && user != nil && user.Email != "" {
		if err := s.mailer.SendSubscriptionActivated(user.Email, plan.Name, sub.CurrentPeriodEnd); err != nil {
			s.logger.Warn("PAYMENT", "activation email failed", map[string]interface{}{"user_id": user.Id.String(), "error": err.Error()})
		}
	}
}

func (s *paymentService) GetSubscriptionStatus(ctx context.Context, caller dto.Caller) (*dto.SubscriptionStatusResponse, error) {
	if caller.IsGuest {
		return nil, dto.NewAuthenticationError("login required")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.verifier.EnsureUser(ctx, uow, caller)
	if err != nil {
		return nil, err
	}
	ent, err := s.verifier.ResolveEntitlement(ctx, uow, user)
	if err != nil {
		return nil, err
	}

	res := &dto.SubscriptionStatusResponse{
		PlanName: ent.Plan.Name,
		PlanSlug: ent.Plan.Slug,
		Status:   string(entity.SubscriptionStatusInactive),
	}
	if ent.Subscription != nil {
		id := ent.Subscription.Id
		end := ent.Subscription.CurrentPeriodEnd
		res.SubscriptionId = &id
		res.Status = string(ent.Subscription.Status)
		res.CurrentPeriodEnd = &end
		res.IsActive = true
	}
	return res, nil
}

// CancelSubscription stops renewal; access is kept until the current period ends.
func (s *paymentService) CancelSubscription(ctx context.Context, caller dto.Caller) error {
	if caller.IsGuest {
		return dto.NewAuthenticationError("login required")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	subs, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.UserOwnedBy{UserID: caller.UserId},
		specification.Filter("status", string(entity.SubscriptionStatusActive)),
	)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return dto.NewNotFoundError("no active subscription")
	}
	for _, sub := range subs {
		sub.Status = entity.SubscriptionStatusCanceled
		if err := uow.SubscriptionRepository().UpdateSubscription(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}
