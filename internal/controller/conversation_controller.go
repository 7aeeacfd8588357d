package controller

import (
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router, optionalJwt fiber.Handler)
	List(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
}

func NewConversationController(conversationService service.IConversationService) IConversationController {
	return &conversationController{conversationService: conversationService}
}

// Guests reach the handlers too; the service decides what an anonymous caller may see.
func (c *conversationController) RegisterRoutes(r fiber.Router, optionalJwt fiber.Handler) {
	h := r.Group("/conversations", optionalJwt)
	h.Get("", c.List)
	h.Get("/:id/messages", c.GetMessages)
	h.Delete("/:id", c.Delete)
}

func (c *conversationController) List(ctx *fiber.Ctx) error {
	res, err := c.conversationService.List(ctx.Context(), serverutils.CallerFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *conversationController) GetMessages(ctx *fiber.Ctx) error {
	res, err := c.conversationService.GetMessages(ctx.Context(), serverutils.CallerFromCtx(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	if err := c.conversationService.Delete(ctx.Context(), serverutils.CallerFromCtx(ctx), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true})
}
