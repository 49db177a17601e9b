package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fixify/database/repository"
	"fixify/services/booking"
	"fixify/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates service-layer errors into HTTP responses.
// Conflict-class errors are distinguishable by message so a client can tell
// a lost race from a capability mismatch.
func respondServiceError(c *gin.Context, err error) {
	var vErr booking.ValidationError
	if errors.As(err, &vErr) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", vErr.Error())
		return
	}

	var cdErr booking.CooldownError
	if errors.As(err, &cdErr) {
		utils.JSONErrorWithHint(c, http.StatusTooManyRequests, "Code sent recently", cdErr.Error(),
			fmt.Sprintf("retry after %d seconds", int(cdErr.Remaining.Seconds())))
		return
	}

	var codeErr booking.InvalidCodeError
	if errors.As(err, &codeErr) {
		utils.JSONErrorWithHint(c, http.StatusUnprocessableEntity, "Incorrect code", codeErr.Error(),
			fmt.Sprintf("%d attempts remaining", codeErr.AttemptsLeft))
		return
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, repository.ErrAlreadyAssigned):
		utils.JSONError(c, http.StatusConflict, "Booking already assigned", err.Error())
	case errors.Is(err, repository.ErrProfessionalUnavailable):
		utils.JSONError(c, http.StatusConflict, "Professional unavailable", err.Error())
	case errors.Is(err, repository.ErrCapabilityMismatch):
		utils.JSONError(c, http.StatusConflict, "Capability mismatch", err.Error())
	case errors.Is(err, repository.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "Invalid state for this operation", err.Error())
	case errors.Is(err, booking.ErrNotAllowed):
		utils.JSONError(c, http.StatusForbidden, "Not permitted", err.Error())
	case errors.Is(err, booking.ErrNoSession):
		utils.JSONError(c, http.StatusUnprocessableEntity, "No code issued", err.Error())
	case errors.Is(err, booking.ErrCodeExpired):
		utils.JSONError(c, http.StatusUnprocessableEntity, "Code expired", err.Error())
	case errors.Is(err, booking.ErrMaxAttempts):
		utils.JSONError(c, http.StatusUnprocessableEntity, "Attempts exhausted", err.Error())
	case errors.Is(err, booking.ErrDeliveryFailed):
		utils.JSONError(c, http.StatusBadGateway, "Code delivery failed", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.JSONError(c, http.StatusGatewayTimeout, "Upstream timeout", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
