package controller

import (
	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
}

type adminController struct {
	adminService service.IAdminService
}

func NewAdminController(adminService service.IAdminService) IAdminController {
	return &adminController{adminService: adminService}
}

func (c *adminController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/admin", jwtMiddleware, serverutils.RequireAdmin)

	// User Management
	h.Get("/users", c.GetAllUsers)
	h.Put("/users/:id/ai-limit", c.UpdateAiLimit)
	h.Post("/users/:id/reset-usage", c.ResetAiUsage)

	// Plan Management
	h.Get("/plans", c.GetAllPlans)
	h.Put("/plans/:id", c.UpdatePlan)

	// Subscription Management
	h.Post("/subscriptions/grant", c.GrantSubscription)
}

func (c *adminController) GetAllUsers(ctx *fiber.Ctx) error {
	var query dto.AdminUserListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return dto.NewValidationError("invalid query")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}
	res, err := c.adminService.GetAllUsers(ctx.Context(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Users retrieved", res))
}

func (c *adminController) UpdateAiLimit(ctx *fiber.Ctx) error {
	id, err := paramId(ctx, "user")
	if err != nil {
		return err
	}
	var req dto.UpdateAiLimitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.adminService.UpdateAiLimit(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("AI limit updated", res))
}

func (c *adminController) ResetAiUsage(ctx *fiber.Ctx) error {
	id, err := paramId(ctx, "user")
	if err != nil {
		return err
	}
	res, err := c.adminService.ResetAiUsage(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("AI usage reset", res))
}

func (c *adminController) GetAllPlans(ctx *fiber.Ctx) error {
	res, err := c.adminService.GetAllPlans(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", res))
}

func (c *adminController) UpdatePlan(ctx *fiber.Ctx) error {
	id, err := paramId(ctx, "plan")
	if err != nil {
		return err
	}
	var req dto.AdminUpdatePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.adminService.UpdatePlan(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan updated", res))
}

func (c *adminController) GrantSubscription(ctx *fiber.Ctx) error {
	var req dto.AdminGrantSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.adminService.GrantSubscription(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Subscription granted", res))
}
