package controller

import (
	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IExerciseController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
}

type exerciseController struct {
	service service.IExerciseService
}

func NewExerciseController(service service.IExerciseService) IExerciseController {
	return &exerciseController{service: service}
}

func (c *exerciseController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	r.Get("/exercise-categories", c.ListCategories)
	r.Get("/exercises", c.ListExercises)
	r.Get("/exercises/:id", c.GetExercise)

	admin := r.Group("/admin", jwtMiddleware, serverutils.RequireAdmin)
	admin.Post("/exercise-categories", c.CreateCategory)
	admin.Put("/exercise-categories/:id", c.UpdateCategory)
	admin.Delete("/exercise-categories/:id", c.DeleteCategory)
	admin.Post("/exercises", c.CreateExercise)
	admin.Put("/exercises/:id", c.UpdateExercise)
	admin.Delete("/exercises/:id", c.DeleteExercise)
}

func paramId(ctx *fiber.Ctx, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, dto.NewNotFoundError(what + " not found")
	}
	return id, nil
}

func (c *exerciseController) ListCategories(ctx *fiber.Ctx) error {
	res, err := c.service.ListCategories(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Categories retrieved", res))
}

func (c *exerciseController) ListExercises(ctx *fiber.Ctx) error {
	var query dto.ExerciseListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return dto.NewValidationError("invalid query")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}
	res, err := c.service.ListExercises(ctx.Context(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Exercises retrieved", res))
}

func (c *exerciseController) GetExercise(ctx *fiber.Ctx) error {
	id, err := paramId(ctx, "exercise")
	if err != nil {
		return err
	}
	res, err := c.service.GetExercise(ctx.Context(), id, ctx.Query("locale"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Exercise retrieved", res))
}

func (c *exerciseController) CreateCategory(ctx *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.CreateCategory(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Category created", res))
}

func (c *exerciseController) UpdateCategory(ctx *fiber.Ctx) error {
	id, err := paramId(ctx, "category")
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.UpdateCategory(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Category updated", res))
}

func (c *exerciseController) DeleteCategory(ctx *fiber.Ctx) error {
	id, err := paramId(ctx, "category")
	if err != nil {
		return err
	}
	if err := c.service.DeleteCategory(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Category deleted", nil))
}

func (c *exerciseController) CreateExercise(ctx *fiber.Ctx) error {
	var req dto.ExerciseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.CreateExercise(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Exercise created", res))
}

func (c *exerciseController) UpdateExercise(ctx *fiber.Ctx) error {
	id, err := paramId(ctx, "exercise")
	if err != nil {
		return err
	}
	var req dto.ExerciseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.service.UpdateExercise(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Exercise updated", res))
}

func (c *exerciseController) DeleteExercise(ctx *fiber.Ctx) error {
	id, err := paramId(ctx, "exercise")
	if err != nil {
		return err
	}
	if err := c.service.DeleteExercise(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Exercise deleted", nil))
}
