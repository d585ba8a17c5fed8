// Package apperr builds the client-facing errors of the API on top of
// go-utils errs.AppError. Code is the HTTP status, Message is what the
// client sees.
package apperr

import (
	"errors"
	"net/http"

	"github.com/umakantv/go-utils/errs"
)

// Messages shown to clients when no specific message is given.
const (
	MsgInternal           = "Error interno del servidor"
	MsgNotAuthenticated   = "No autenticado"
	MsgInvalidCredentials = "Correo o contraseña incorrectos"
	MsgInvalidJSON        = "JSON inválido"
	MsgTooManyRequests    = "Demasiados intentos, inténtalo más tarde"
)

// Validation answers 400; errs.NewValidationError defaults to 422.
func Validation(message string) *errs.AppError {
	e := errs.NewValidationError(message)
	e.Code = http.StatusBadRequest
	return e
}

func Authentication(message string) *errs.AppError {
	if message == "" {
		message = MsgNotAuthenticated
	}
	return errs.NewAuthenticationError(message)
}

func NotFound(message string) *errs.AppError {
	return errs.NewNotFoundError(message)
}

func Conflict(message string) *errs.AppError {
	return &errs.AppError{Code: http.StatusConflict, Message: message}
}

func RateLimited() *errs.AppError {
	return &errs.AppError{Code: http.StatusTooManyRequests, Message: MsgTooManyRequests}
}

func Internal() *errs.AppError {
	return errs.NewInternalServerError(MsgInternal)
}

// From returns the *errs.AppError in err's chain. ok is false when err
// carries none; the result is then Internal and the caller should log err.
func From(err error) (appErr *errs.AppError, ok bool) {
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return Internal(), false
}
