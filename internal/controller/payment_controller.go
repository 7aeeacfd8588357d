package controller

import (
	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Checkout(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	CancelSubscription(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
}

func NewPaymentController(service service.IPaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/subscription")
	h.Post("/webhook", c.Webhook)

	// Protected Routes
	h.Post("/checkout", jwtMiddleware, c.Checkout)
	h.Get("/status", jwtMiddleware, c.GetStatus)
	h.Post("/cancel", jwtMiddleware, c.CancelSubscription)
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSubscription(ctx.Context(), serverutils.CallerFromCtx(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Checkout created", res))
}

// Webhook receives Midtrans payment notifications.
func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid notification body")
	}
	if err := c.service.HandleNotification(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Notification processed", nil))
}

func (c *paymentController) GetStatus(ctx *fiber.Ctx) error {
	res, err := c.service.GetSubscriptionStatus(ctx.Context(), serverutils.CallerFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status retrieved", res))
}

func (c *paymentController) CancelSubscription(ctx *fiber.Ctx) error {
	if err := c.service.CancelSubscription(ctx.Context(), serverutils.CallerFromCtx(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Subscription canceled", nil))
}
