package controller

import (
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
}

type userController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) IUserController {
	return &userController{userService: userService}
}

func (c *userController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	r.Get("/user/me", jwtMiddleware, c.GetProfile)
}

// GetProfile returns the caller's account record
// @Summary Get current user
// @Tags User
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Router /api/user/me [get]
func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	res, err := c.userService.GetProfile(ctx.Context(), serverutils.CallerFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile retrieved", res))
}
