package serverutils

import (
	"errors"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders any error returned further down the chain as a JSON failure.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, log, err)
	}
}

func WriteError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	var limitErr *dto.LimitExceededError
	if errors.As(err, &limitErr) {
		return ctx.Status(fiber.StatusTooManyRequests).JSON(BaseResponse[dto.LimitExceededData]{
			Success: false,
			Code:    fiber.StatusTooManyRequests,
			Message: limitErr.Error(),
			Error:   string(dto.ErrorKindMessageLimitReached),
			Data: dto.LimitExceededData{
				Limit:            limitErr.Limit,
				Used:             limitErr.Used,
				ResetAfter:       limitErr.ResetAfter,
				ShowModalPricing: true,
			},
		})
	}

	var appErr *dto.AppError
	if errors.As(err, &appErr) {
		status := StatusForKind(appErr.Kind)
		if appErr.Kind == dto.ErrorKindFileUpload && appErr.Detail == dto.FileTooLargeDetail {
			status = fiber.StatusRequestEntityTooLarge
		}
		if status >= fiber.StatusInternalServerError && log != nil {
			log.Error("HTTP", appErr.Message, map[string]interface{}{
				"path":  ctx.Path(),
				"error": appErr.Error(),
			})
		}
		return ctx.Status(status).JSON(AppErrorResponse(status, appErr.Kind, appErr.Message, appErr.Detail))
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ctx.Status(fiber.StatusBadRequest).JSON(AppErrorResponse(fiber.StatusBadRequest, dto.ErrorKindValidation, ValidationMessage(verrs), ""))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	if log != nil {
		log.Error("HTTP", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
}
