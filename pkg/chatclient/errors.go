package chatclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

type ErrorKind string

const (
	KindValidation           ErrorKind = "VALIDATION"
	KindAuthentication       ErrorKind = "AUTHENTICATION"
	KindAuthorization        ErrorKind = "AUTHORIZATION"
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindFileUpload           ErrorKind = "FILE_UPLOAD"
	KindNetwork              ErrorKind = "NETWORK"
	KindMessageLimitReached  ErrorKind = "MESSAGE_LIMIT_REACHED"
	KindRateLimited          ErrorKind = "RATE_LIMITED"
	KindInternal             ErrorKind = "INTERNAL"
	KindGuestQuotaExhausted  ErrorKind = "GUEST_QUOTA_EXHAUSTED"
	KindConversationNotReady ErrorKind = "CONVERSATION_NOT_READY"
)

const fallbackMessage = "Something went wrong. Please try again."

// maxRawBodyMessage caps how much of a non-JSON body is surfaced as the message.
const maxRawBodyMessage = 200

// Error is the single error type returned by the client. Status is 0 for
// failures that never reached the server.
type Error struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Status  int
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches on Kind so callers can use errors.Is with the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrConversationNotReady = &Error{Kind: KindConversationNotReady, Message: "the first message of this conversation is still being sent"}
	ErrGuestQuotaExhausted  = &Error{Kind: KindGuestQuotaExhausted, Message: "guest message limit reached, sign in to keep chatting"}
	ErrMessageLimitReached  = &Error{Kind: KindMessageLimitReached, Message: "daily message limit reached"}
)

func IsLimitReached(err error) bool {
	return errors.Is(err, ErrMessageLimitReached)
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindAuthorization
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusRequestEntityTooLarge:
		return KindFileUpload
	case http.StatusTooManyRequests:
		// the plan quota is only reported through an explicit MESSAGE_LIMIT_REACHED code
		return KindRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindNetwork
	}
	return KindInternal
}

var knownKinds = map[ErrorKind]bool{
	KindValidation:          true,
	KindAuthentication:      true,
	KindAuthorization:       true,
	KindNotFound:            true,
	KindFileUpload:          true,
	KindNetwork:             true,
	KindMessageLimitReached: true,
	KindRateLimited:         true,
	KindInternal:            true,
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// parseError builds an *Error from a non-2xx response. The message falls back to
// the raw body, then the status text, then a canned string.
func parseError(status int, body []byte) *Error {
	e := &Error{Status: status, Kind: kindForStatus(status)}

	var p errorPayload
	if err := json.Unmarshal(body, &p); err == nil {
		if k := ErrorKind(strings.ToUpper(p.Error)); knownKinds[k] {
			e.Kind = k
		}
		e.Message = strings.TrimSpace(p.Message)
		e.Detail = p.Detail
	} else if raw := strings.TrimSpace(string(body)); raw != "" && utf8.ValidString(raw) {
		if len(raw) > maxRawBodyMessage {
			raw = raw[:maxRawBodyMessage]
		}
		e.Message = raw
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = fallbackMessage
	}
	return e
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "could not reach the server", Detail: err.Error()}
}
