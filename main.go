package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"aid-relief-server/config"
	"aid-relief-server/database"
	"aid-relief-server/jobs"
	"aid-relief-server/middleware"
	"aid-relief-server/routes"
	"aid-relief-server/services"
	ws "aid-relief-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database (runs migrations)
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Disable automatic redirects for trailing slashes
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers (must be first)
	router.Use(middleware.SecurityHeadersMiddleware())

	// Input validation
	router.Use(middleware.InputValidationMiddleware())

	// Rate limiting
	router.Use(middleware.RateLimitMiddleware())

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppConfig.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Device-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Audit logging
	router.Use(middleware.AuditLogMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Aid Relief Server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Live tracking hub
	hub := ws.NewHub()
	go hub.Run()

	// Core services
	matching := services.NewMatchingService(database.DB)
	lifecycle := services.NewDeliveryLifecycleService(database.DB)
	tracker := services.NewLocationTracker(database.DB, hub)
	jwtService := services.NewJWTService()

	// API routes
	api := router.Group("/api/v1")
	{
		// Auth routes (no authentication required) - with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes, jwtService)

		// Public reverse geocoding helper
		geocodeRoutes := api.Group("/geocode")
		routes.RegisterGeocodeRoutes(geocodeRoutes)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			donationRoutes := protected.Group("/donations")
			routes.RegisterDonationRoutes(donationRoutes)

			requestRoutes := protected.Group("/requests")
			routes.RegisterRequestRoutes(requestRoutes)

			deliveryRoutes := protected.Group("/deliveries")
			routes.RegisterDeliveryRoutes(deliveryRoutes, routes.DeliveryDeps{
				Matching:  matching,
				Lifecycle: lifecycle,
				Tracker:   tracker,
				Hub:       hub,
			})

			feedbackRoutes := protected.Group("/feedback")
			routes.RegisterFeedbackRoutes(feedbackRoutes)

			// Donation photo uploads
			routes.RegisterDonationMediaRoutes(protected)

			// Admin routes
			adminRoutes := protected.Group("/admin")
			adminRoutes.Use(middleware.AdminOnly())
			routes.RegisterAdminRoutes(adminRoutes)
		}

		// WebSocket tracking endpoint authenticates via token query param
		wsRoutes := api.Group("/ws")
		wsRoutes.Use(middleware.WebSocketAuthMiddleware())
		routes.RegisterTrackingRoutes(wsRoutes, hub)
	}

	// Seed the bootstrap admin account if configured
	seedAdmin()

	// Background jobs
	staleJob := jobs.NewStaleLocationJob()
	staleJob.Start()
	defer staleJob.Stop()

	// Periodic cleanup of expired refresh tokens
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := jwtService.CleanupExpiredTokens(); err != nil {
				log.Printf("⚠️ Refresh token cleanup failed: %v", err)
			}
		}
	}()

	port := config.AppConfig.Server.Port
	log.Printf("🚀 Aid Relief Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
