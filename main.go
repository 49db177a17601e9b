// File: fixify/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixify/config"
	"fixify/cron"
	"fixify/database"
	bookingRepoPkg "fixify/database/repository/booking"
	customerRepoPkg "fixify/database/repository/customer"
	professionalRepoPkg "fixify/database/repository/professional"
	serviceRepoPkg "fixify/database/repository/service"
	"fixify/handlers"
	"fixify/middleware"
	"fixify/routes"
	"fixify/services/booking"
	"fixify/services/dispatch"
	"fixify/services/notification"
	"fixify/services/tracking"
	"fixify/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	professionalRepo := professionalRepoPkg.NewMongoProfessionalRepo()
	serviceRepo := serviceRepoPkg.NewMongoServiceRepo()
	customerRepo := customerRepoPkg.NewMongoCustomerRepo()

	if err := bookingRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}
	if err := professionalRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure professional indexes: %v", err)
	}

	// services.
	locationCache := dispatch.NewRedisLocationCache()

	matcher := &dispatch.DefaultMatcherService{
		ProfessionalRepo: professionalRepo,
		Cache:            locationCache,
		RadiusKm:         config.AppConfig.SearchRadiusKm,
		SpeedKmh:         config.AppConfig.AssumedSpeedKmh,
	}

	trackingService := &tracking.DefaultTrackingService{
		BookingRepo:      bookingRepo,
		ProfessionalRepo: professionalRepo,
		Cache:            locationCache,
		Publisher:        tracking.NewRedisPublisher(),
		SpeedKmh:         config.AppConfig.AssumedSpeedKmh,
	}

	queue := cron.NewQueue()
	defer queue.Close()

	bookingService := &booking.DefaultBookingService{
		Repo:             bookingRepo,
		ProfessionalRepo: professionalRepo,
		ServiceRepo:      serviceRepo,
		CustomerRepo:     customerRepo,
		Matcher:          matcher,
		Tracker:          trackingService,
		Codes:            utils.NewRedisCodeChannel(),
		Queue:            queue,
		SpeedKmh:         config.AppConfig.AssumedSpeedKmh,
		CommissionRate:   config.AppConfig.CommissionRate,
		MinLeadTime:      time.Duration(config.AppConfig.MinLeadTimeMins) * time.Minute,
		PendingTTL:       time.Duration(config.AppConfig.PendingTTLMins) * time.Minute,
	}

	notificationService, err := notification.NewDefaultNotificationService(customerRepo, professionalRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	// Background worker for pushes and pending-window expiries.
	cron.InitWorker(bookingService, notificationService)

	// Periodic dependency health snapshots.
	utils.StartHealthMonitor(
		[]*redis.Client{
			utils.GetCacheClient(),
			utils.GetLocationCacheClient(),
			utils.GetCodeCacheClient(),
		},
		database.MongoClient,
	)

	// handlers.
	bookingHandler := &handlers.BookingHandler{Svc: bookingService}
	trackingHandler := &handlers.TrackingHandler{
		Tracker:     trackingService,
		BookingRepo: bookingRepo,
		Redis:       utils.GetLocationCacheClient(),
	}
	professionalHandler := &handlers.ProfessionalHandler{
		Repo:  professionalRepo,
		Cache: locationCache,
	}

	handlerBundle := handlers.NewHandlerBundle(bookingHandler, trackingHandler, professionalHandler)

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
