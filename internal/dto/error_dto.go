package dto

import (
	"fmt"
	"time"
)

// ErrorKind is the machine-readable code sent as "error" in failure payloads.
type ErrorKind string

const (
	ErrorKindValidation          ErrorKind = "VALIDATION"
	ErrorKindAuthentication      ErrorKind = "AUTHENTICATION"
	ErrorKindAuthorization       ErrorKind = "AUTHORIZATION"
	ErrorKindNotFound            ErrorKind = "NOT_FOUND"
	ErrorKindFileUpload          ErrorKind = "FILE_UPLOAD"
	ErrorKindNetwork             ErrorKind = "NETWORK"
	ErrorKindMessageLimitReached ErrorKind = "MESSAGE_LIMIT_REACHED"
	ErrorKindRateLimited         ErrorKind = "RATE_LIMITED"
	ErrorKindInternal            ErrorKind = "INTERNAL"
)

// AppError is the single tagged error returned by services.
type AppError struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: ErrorKindValidation, Message: message}
}

func NewAuthenticationError(message string) *AppError {
	return &AppError{Kind: ErrorKindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: ErrorKindAuthorization, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: ErrorKindNotFound, Message: message}
}

// FileTooLargeDetail marks a FILE_UPLOAD error that should be answered with 413.
const FileTooLargeDetail = "file_too_large"

func NewFileUploadError(message, detail string) *AppError {
	return &AppError{Kind: ErrorKindFileUpload, Message: message, Detail: detail}
}

func NewFileTooLargeError(message string) *AppError {
	return &AppError{Kind: ErrorKindFileUpload, Message: message, Detail: FileTooLargeDetail}
}

func NewNetworkError(message string, err error) *AppError {
	return &AppError{Kind: ErrorKindNetwork, Message: message, Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Kind: ErrorKindInternal, Message: "internal server error", Err: err}
}

// --- Limit Exceeded Error Types ---

// LimitExceededError is a custom error that carries usage details
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "daily AI coach message limit reached"
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit            int       `json:"limit"`
	Used             int       `json:"used"`
	ResetAfter       time.Time `json:"reset_after"`
	ShowModalPricing bool      `json:"show_modal_pricing"`
}
