package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current resource state")

// ErrForbidden indicates that the caller lacks permission for the requested action.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrRefreshTokenExpired indicates the stored refresh token has expired.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrInvalidTransition indicates an illegal state-machine move (e.g. paying a rejected settlement).
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrSettlementLocked indicates an attempted mutation of a settlement that is no longer editable.
var ErrSettlementLocked = errors.New("settlement is locked")

// AppError carries an HTTP-ish status code alongside a message and the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	// Map codes back to sentinels so errors.Is keeps working through AppError.
	switch e.Code {
	case 400:
		return ErrValidation
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	default:
		return ErrInternal
	}
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a 404 AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewConflictError creates a 409 AppError wrapping ErrConflict.
func NewConflictError(message string) *AppError {
	return &AppError{Code: 409, Message: message, Err: ErrConflict}
}

// NewValidationFailedError creates a 400 AppError wrapping ErrValidation. The
// optional cause is kept in the chain alongside the sentinel.
func NewValidationFailedError(message string, cause error) *AppError {
	err := error(ErrValidation)
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrValidation, cause)
	}
	return &AppError{Code: 400, Message: message, Err: err}
}

// NewBadRequestError creates a 400 AppError wrapping ErrValidation.
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// NewUnauthorizedError creates a 401 AppError wrapping ErrUnauthorized.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: 401, Message: message, Err: ErrUnauthorized}
}

// NewInternalServerError creates a 500 AppError wrapping ErrInternal.
func NewInternalServerError(message string) *AppError {
	return &AppError{Code: 500, Message: message, Err: ErrInternal}
}

// NewGatewayTimeoutError creates a 504 AppError wrapping ErrInternal.
func NewGatewayTimeoutError(message string) *AppError {
	return &AppError{Code: 504, Message: message, Err: ErrInternal}
}
