package handlers

import (
	"net/http"

	bookingRepo "fixify/database/repository/booking"
	"fixify/models"
	"fixify/services/tracking"
	"fixify/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; tighten for production deployments.
		return true
	},
}

// TrackingHandler exposes position ingestion and live subscription.
type TrackingHandler struct {
	Tracker     tracking.Service
	BookingRepo bookingRepo.Repository
	Redis       *redis.Client
}

// Ingest handles POST /bookings/:id/location, one position ping from the
// assigned professional.
func (h *TrackingHandler) Ingest(c *gin.Context) {
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

	t, err := h.Tracker.Ingest(c.Request.Context(), tracking.IngestRequest{
		BookingID:      c.Param("id"),
		ProfessionalID: actorID,
		Lat:            input.Lat,
		Lng:            input.Lng,
		AccuracyM:      input.AccuracyM,
		HeadingDeg:     input.HeadingDeg,
		SpeedKmh:       input.SpeedKmh,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracking": t})
}

// Subscribe handles GET /bookings/:id/track. It upgrades to a websocket
// and relays the booking's pub/sub topic until either side disconnects.
// Only parties to the booking (and admins) may subscribe.
func (h *TrackingHandler) Subscribe(c *gin.Context) {
	actorID, role := actorFrom(c)
	bookingID := c.Param("id")

	b, err := h.BookingRepo.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !mayObserve(b, actorID, role) {
		utils.JSONError(c, http.StatusForbidden, "Not permitted", "not a party to this booking")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "WebSocket upgrade failed", err.Error())
		return
	}
	defer conn.Close()

	sub := h.Redis.Subscribe(c.Request.Context(), tracking.Topic(bookingID))
	defer sub.Close()

	// Drain client frames so we notice disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				utils.GetLogger().Debug("tracking subscriber dropped",
					zap.String("bookingId", bookingID), zap.Error(err))
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func mayObserve(b *models.Booking, actorID string, role models.Role) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return b.CustomerID == actorID
	case models.RoleProfessional:
		return b.ProfessionalID == actorID
	}
	return false
}
