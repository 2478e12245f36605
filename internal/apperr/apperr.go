package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind is a machine-readable failure code surfaced to API clients.
type Kind string

const (
	KindCodeExpired          Kind = "code_expired"
	KindCodeIncorrect        Kind = "code_incorrect"
	KindCodeInactive         Kind = "code_inactive"
	KindRetryLimitExceeded   Kind = "retry_limit_exceeded"
	KindTokenInvalid         Kind = "token_invalid"
	KindTokenExpired         Kind = "token_expired"
	KindRefreshWindowExpired Kind = "refresh_window_expired"
	KindValidationFailed     Kind = "validation_failed"
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindNotFound             Kind = "not_found"
	KindConflict             Kind = "conflict"
	KindInternal             Kind = "internal_error"
)

// Error carries a failure kind alongside a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by kind so callers can compare against sentinels.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newError(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Message: message, Status: status}
}

func CodeExpired() *Error {
	return newError(KindCodeExpired, fiber.StatusBadRequest, "activation code has expired")
}

func CodeIncorrect() *Error {
	return newError(KindCodeIncorrect, fiber.StatusBadRequest, "activation code is not correct")
}

func CodeInactive() *Error {
	return newError(KindCodeInactive, fiber.StatusBadRequest, "activation code is no longer active")
}

func RetryLimitExceeded() *Error {
	return newError(KindRetryLimitExceeded, fiber.StatusBadRequest, "resend attempts limit exceeded")
}

func TokenInvalid(message string) *Error {
	return newError(KindTokenInvalid, fiber.StatusUnauthorized, message)
}

func TokenExpired() *Error {
	return newError(KindTokenExpired, fiber.StatusUnauthorized, "token has expired")
}

func RefreshWindowExpired() *Error {
	return newError(KindRefreshWindowExpired, fiber.StatusUnauthorized, "refresh window has expired")
}

func ValidationFailed(message string) *Error {
	return newError(KindValidationFailed, fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return newError(KindForbidden, fiber.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return newError(KindNotFound, fiber.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return newError(KindConflict, fiber.StatusConflict, message)
}

// ErrorHandler renders errors as the JSON envelope used across the API.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(fiber.Map{
			"success": false,
			"code":    appErr.Kind,
			"message": appErr.Message,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"code":    KindInternal,
			"message": fiberErr.Message,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"code":    KindInternal,
		"message": "internal server error",
	})
}
