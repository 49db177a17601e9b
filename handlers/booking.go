package handlers

import (
	"net/http"
	"strconv"
	"time"

	"fixify/config"
	"fixify/middleware"
	"fixify/models"
	"fixify/services/booking"
	"fixify/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Svc booking.Service
}

func actorFrom(c *gin.Context) (string, models.Role) {
	return c.GetString(middleware.ContextActorID), models.Role(c.GetString(middleware.ContextRole))
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	actorID, _ := actorFrom(c)

	var input struct {
		ServiceID     string    `json:"serviceId" binding:"required"`
		Lat           float64   `json:"lat"`
		Lng           float64   `json:"lng"`
		Address       string    `json:"address"`
		ScheduledTime time.Time `json:"scheduledTime"`
		IsEmergency   bool      `json:"isEmergency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, candidates, err := h.Svc.Create(c.Request.Context(), booking.CreateRequest{
		CustomerID:    actorID,
		ServiceID:     input.ServiceID,
		Lat:           input.Lat,
		Lng:           input.Lng,
		Address:       input.Address,
		ScheduledTime: input.ScheduledTime,
		IsEmergency:   input.IsEmergency,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":    models.ToBookingView(b, models.RoleCustomer),
		"candidates": candidates,
	})
}

// Accept handles POST /bookings/:id/accept.
func (h *BookingHandler) Accept(c *gin.Context) {
	actorID, _ := actorFrom(c)

	b, err := h.Svc.Accept(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": models.ToBookingView(b, models.RoleProfessional)})
}

// Start handles POST /bookings/:id/start.
func (h *BookingHandler) Start(c *gin.Context) {
	actorID, _ := actorFrom(c)

	b, err := h.Svc.Start(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": models.ToBookingView(b, models.RoleProfessional)})
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	actorID, role := actorFrom(c)

	var input struct {
		Reason string `json:"reason"`
	}
	// Reason is optional; ignore body errors on an empty body.
	_ = c.ShouldBindJSON(&input)

	b, err := h.Svc.Cancel(c.Request.Context(), c.Param("id"), actorID, role, input.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": models.ToBookingView(b, role)})
}

// AddCharge handles POST /bookings/:id/charges.
func (h *BookingHandler) AddCharge(c *gin.Context) {
	actorID, _ := actorFrom(c)

	var input struct {
		Description string  `json:"description" binding:"required"`
		Amount      float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, err := h.Svc.AddCharge(c.Request.Context(), c.Param("id"), actorID, input.Description, input.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": models.ToBookingView(b, models.RoleProfessional)})
}

// Active handles GET /bookings/active.
func (h *BookingHandler) Active(c *gin.Context) {
	actorID, role := actorFrom(c)

	b, err := h.Svc.ActiveBooking(c.Request.Context(), actorID, role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": models.ToBookingView(b, role)})
}

// Available handles GET /bookings/available for professionals.
func (h *BookingHandler) Available(c *gin.Context) {
	actorID, _ := actorFrom(c)

	radiusKm := config.AppConfig.SearchRadiusKm
	if raw := c.Query("radiusKm"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			radiusKm = v
		}
	}

	list, err := h.Svc.AvailableBookings(c.Request.Context(), actorID, radiusKm)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// History handles GET /bookings/history.
func (h *BookingHandler) History(c *gin.Context) {
	actorID, role := actorFrom(c)

	status := models.BookingStatus(c.Query("status"))
	list, err := h.Svc.History(c.Request.Context(), actorID, role, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]models.BookingView, 0, len(list))
	for i := range list {
		views = append(views, models.ToBookingView(&list[i], role))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}
