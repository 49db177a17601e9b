package handlers

import (
	"net/http"
	"time"

	professionalRepo "fixify/database/repository/professional"
	"fixify/models"
	"fixify/services/dispatch"
	"fixify/utils"

	"github.com/gin-gonic/gin"
)

// ProfessionalHandler exposes availability and location heartbeat endpoints.
type ProfessionalHandler struct {
	Repo  professionalRepo.Repository
	Cache dispatch.LocationCache
}

// SetAvailability handles PUT /professionals/availability. Going available
// is refused while a booking lock is held.
func (h *ProfessionalHandler) SetAvailability(c *gin.Context) {
	actorID, _ := actorFrom(c)

	var input struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	if err := h.Repo.SetAvailability(c.Request.Context(), actorID, *input.Available); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": *input.Available})
}

// LocationHeartbeat handles PUT /professionals/location, the off-booking
// position ping that keeps matching fresh.
func (h *ProfessionalHandler) LocationHeartbeat(c *gin.Context) {
	actorID, _ := actorFrom(c)

	var input struct {
		Lat        float64 `json:"lat"`
		Lng        float64 `json:"lng"`
		AccuracyM  float64 `json:"accuracyM"`
		HeadingDeg float64 `json:"headingDeg"`
		SpeedKmh   float64 `json:"speedKmh"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	point := models.NewGeoPoint(input.Lat, input.Lng)
	if !point.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", "coordinates out of range")
		return
	}

	loc := models.LiveLocation{
		Point:      point,
		AccuracyM:  input.AccuracyM,
		HeadingDeg: input.HeadingDeg,
		SpeedKmh:   input.SpeedKmh,
		RecordedAt: time.Now(),
	}
	if err := h.Repo.UpdateLocation(c.Request.Context(), actorID, loc); err != nil {
		respondServiceError(c, err)
		return
	}
	if h.Cache != nil {
		h.Cache.Set(c.Request.Context(), actorID, loc)
	}
	c.JSON(http.StatusOK, gin.H{"recordedAt": loc.RecordedAt})
}
