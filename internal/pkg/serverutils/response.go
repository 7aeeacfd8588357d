package serverutils

import (
	"ai-fitcoach-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// BaseResponse is the envelope used by every endpoint except the chat exchange itself.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

// ErrorResponse builds a failure envelope whose "error" code is derived from the HTTP status.
func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
		Error:   string(KindForStatus(code)),
	}
}

func AppErrorResponse(code int, kind dto.ErrorKind, message, detail string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
		Error:   string(kind),
		Detail:  detail,
	}
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind dto.ErrorKind) int {
	switch kind {
	case dto.ErrorKindValidation, dto.ErrorKindFileUpload:
		return fiber.StatusBadRequest
	case dto.ErrorKindAuthentication:
		return fiber.StatusUnauthorized
	case dto.ErrorKindAuthorization:
		return fiber.StatusForbidden
	case dto.ErrorKindNotFound:
		return fiber.StatusNotFound
	case dto.ErrorKindNetwork:
		return fiber.StatusBadGateway
	case dto.ErrorKindMessageLimitReached, dto.ErrorKindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func KindForStatus(status int) dto.ErrorKind {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusMethodNotAllowed:
		return dto.ErrorKindValidation
	case fiber.StatusUnauthorized:
		return dto.ErrorKindAuthentication
	case fiber.StatusForbidden:
		return dto.ErrorKindAuthorization
	case fiber.StatusNotFound:
		return dto.ErrorKindNotFound
	case fiber.StatusRequestEntityTooLarge:
		return dto.ErrorKindFileUpload
	case fiber.StatusBadGateway, fiber.StatusGatewayTimeout, fiber.StatusServiceUnavailable:
		return dto.ErrorKindNetwork
	case fiber.StatusTooManyRequests:
		// only the plan quota path emits MESSAGE_LIMIT_REACHED
		return dto.ErrorKindRateLimited
	default:
		return dto.ErrorKindInternal
	}
}
