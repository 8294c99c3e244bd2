package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbiddenActor):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrMembershipConflict),
		errors.Is(err, apperrors.ErrStatementSealed),
		errors.Is(err, apperrors.ErrClosingNotAllowed),
		errors.Is(err, apperrors.ErrInvalidStateTransition):
		return http.StatusConflict
	case apperrors.IsPrecondition(err):
		// currency mismatch, overpayment, no account, insufficient funds
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrReferenceExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err at a level matching its status and writes the error body.
// Server-side failures are reported with fallback instead of the raw error.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromContext(c)
	status := statusFor(err)

	body := dto.ErrorResponse{Error: err.Error()}
	if reason, ok := apperrors.ClosingReasonOf(err); ok {
		body.Reason = string(reason)
	}

	if status >= http.StatusInternalServerError {
		if errors.Is(err, apperrors.ErrIntegrity) {
			logger.Error("Integrity check failed", slog.String("error", err.Error()))
		} else {
			logger.Error(fallback, slog.String("error", err.Error()))
		}
		body.Error = fallback
		c.JSON(status, body)
		return
	}

	logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, body)
}

// respondBindError reports a malformed body or query string.
func respondBindError(c *gin.Context, err error, what string) {
	middleware.GetLoggerFromContext(c).Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid " + what + ": " + err.Error()})
}

// actorOf returns the actor stored by middleware.RequireActor.
func actorOf(c *gin.Context) (string, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Error("Actor not found in context")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: middleware.ActorHeader + " header is required"})
		return "", false
	}
	return actor, true
}
