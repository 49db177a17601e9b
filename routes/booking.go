package routes

import (
	"fixify/handlers"
	"fixify/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the dispatch engine.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	api.Use(middleware.JWTAuthMiddleware())
	{
		// Customer side
		api.POST("", middleware.RequireRole("customer"), hb.CreateBooking)

		// Professional side
		api.GET("/available", middleware.RequireRole("professional"), hb.AvailableList)
		api.POST("/:id/accept", middleware.RequireRole("professional"), hb.AcceptBooking)
		api.POST("/:id/start", middleware.RequireRole("professional"), hb.StartBooking)
		api.POST("/:id/charges", middleware.RequireRole("professional"), hb.AddCharge)
		api.POST("/:id/completion-code", middleware.RequireRole("professional"), hb.IssueCode)
		api.POST("/:id/complete", middleware.RequireRole("professional"), hb.VerifyCode)
		api.POST("/:id/location", middleware.RequireRole("professional"), hb.IngestLocation)

		// Either party
		api.POST("/:id/cancel", hb.CancelBooking)
		api.GET("/active", hb.ActiveBooking)
		api.GET("/history", hb.BookingHistory)
		api.GET("/:id/track", hb.TrackBooking)
	}
}
