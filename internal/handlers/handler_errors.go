package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/haulbooks/settlements_backend/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondWithError translates a service error into an HTTP response. An
// explicit AppError carries its own status code; otherwise the sentinel in the
// error chain decides the status, falling back to 500 with the given message.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(fallbackMsg, slog.String("error", err.Error()))
		} else {
			logger.Warn(fallbackMsg, slog.String("error", err.Error()))
		}
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}

	status := http.StatusInternalServerError
	message := fallbackMsg
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrRefreshTokenExpired):
		status = http.StatusUnauthorized
		message = "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		message = "Forbidden"
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = "Resource not found"
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrSettlementLocked):
		status = http.StatusConflict
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
	} else {
		logger.Warn(fallbackMsg, slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": message})
}
