package handlers

import (
	"net/http"

	"fixify/models"
	"fixify/utils"

	"github.com/gin-gonic/gin"
)

// IssueCode handles POST /bookings/:id/completion-code. The assigned
// professional triggers delivery of a one-time code to the customer.
func (h *BookingHandler) IssueCode(c *gin.Context) {
	actorID, _ := actorFrom(c)

	sessionID, err := h.Svc.IssueCompletionCode(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

// VerifyCode handles POST /bookings/:id/complete. A correct code completes
// the booking and returns the payout breakdown.
func (h *BookingHandler) VerifyCode(c *gin.Context) {
	actorID, _ := actorFrom(c)

	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, payout, err := h.Svc.VerifyCompletionCode(c.Request.Context(), c.Param("id"), actorID, input.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking": models.ToBookingView(b, models.RoleProfessional),
		"payout":  payout,
	})
}
