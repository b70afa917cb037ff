package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/visitordesk/checkin-backend/internal/config"
	"github.com/visitordesk/checkin-backend/internal/database"
	"github.com/visitordesk/checkin-backend/internal/handlers"
	"github.com/visitordesk/checkin-backend/internal/middleware"
	"github.com/visitordesk/checkin-backend/internal/services"
	"github.com/visitordesk/checkin-backend/pkg/jwt"
	"github.com/visitordesk/checkin-backend/pkg/slack"
	"github.com/visitordesk/checkin-backend/pkg/sms"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting VisitorDesk Check-in Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize storage. Development mode without a database URL runs on
	// in-memory stores so the webhook pipeline can be exercised locally.
	var (
		guestStore database.GuestStore
		auditStore database.AuditStore
		db         database.DB
	)
	if cfg.Database.URL == "" && cfg.Server.Environment == "development" {
		logger.Info("No DATABASE_URL set, using in-memory stores")
		guestStore = database.NewMemoryGuestStore()
		auditStore = database.NewMemoryAuditStore()
	} else {
		logger.Info("Connecting to database...")
		db, err = database.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		logger.Info("Database connection established")

		guestStore = database.NewGuestRepository(db)
		auditStore = database.NewAuditRepository(db)
	}

	// Initialize SMS gateway (Twilio)
	var smsGateway sms.Gateway
	if cfg.Twilio.Mode == "production" {
		logger.Info("Initializing Twilio SMS gateway in production mode...")
		smsGateway = sms.NewTwilioGateway(sms.TwilioConfig{
			APIURL:     cfg.Twilio.APIURL,
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			FromNumber: cfg.Twilio.FromNumber,
		})
	} else {
		logger.Info("SMS gateway in development mode (messages are logged, not sent)")
		smsGateway = sms.NewLogGateway(logger)
	}

	// Initialize Slack notifier
	var notifier slack.Notifier
	if cfg.Slack.BotToken != "" && cfg.Slack.ChannelID != "" {
		logger.Info("Initializing Slack Web API client...")
		notifier = slack.NewWebClient(slack.Config{
			APIURL:    cfg.Slack.APIURL,
			BotToken:  cfg.Slack.BotToken,
			ChannelID: cfg.Slack.ChannelID,
		})
	} else {
		logger.Info("Slack notifier in development mode (messages are logged, not posted)")
		notifier = slack.NewLogNotifier()
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(auditStore)
	visitService := services.NewVisitService(
		services.NewNormalizerService(),
		services.NewConsentService(auditService),
		services.NewStatusService(guestStore),
		services.NewNotificationService(smsGateway, notifier, cfg.Notifications.ChannelTimeout),
		auditService,
		guestStore,
	)
	statsService := services.NewStatsService(guestStore)
	adminAuthService := services.NewAdminAuthService(cfg.Admin, jwtService, cfg.JWT.AccessTokenExpiry)
	logger.Info("Services initialized")

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(visitService, cfg.Slack, logger)
	guestHandler := handlers.NewGuestHandler(visitService, statsService, auditService, logger)
	adminHandler := handlers.NewAdminHandler(adminAuthService, auditService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Webhook routes (public, verified by provider signatures)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/form", webhookHandler.HandleFormSubmission)
			webhooks.POST("/slack", webhookHandler.HandleSlackInteraction)
			webhooks.POST("/sms", webhookHandler.HandleInboundSMS)
		}

		// Admin authentication routes (public)
		admin := v1.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)
			admin.POST("/refresh", adminHandler.Refresh)

			// Protected routes (require JWT authentication)
			adminProtected := admin.Group("")
			adminProtected.Use(middleware.AuthMiddleware(jwtService))
			adminProtected.Use(middleware.RequireRole("admin"))
			{
				adminProtected.GET("/audit", adminHandler.RecentAudit)
			}
		}

		// Guest routes (protected, used by the reception dashboard)
		guests := v1.Group("/guests")
		guests.Use(middleware.AuthMiddleware(jwtService))
		{
			guests.GET("", guestHandler.ListGuests)
			guests.POST("", guestHandler.CreateGuest)
			guests.GET("/today", guestHandler.TodayGuests)
			guests.GET("/checked-in", guestHandler.CheckedInGuests)
			guests.GET("/:id", guestHandler.GetGuest)
			guests.POST("/:id/status", guestHandler.UpdateStatus)
			guests.POST("/:id/check-in", guestHandler.CheckIn)
			guests.POST("/:id/check-out", guestHandler.CheckOut)
			guests.POST("/:id/notify-host", guestHandler.NotifyHost)
			guests.POST("/:id/sms", guestHandler.SendSMS)
			guests.GET("/:id/audit", guestHandler.GetGuestAudit)
		}

		// Stats route (protected)
		stats := v1.Group("/stats")
		stats.Use(middleware.AuthMiddleware(jwtService))
		{
			stats.GET("", guestHandler.GetStats)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["user_email"] = userCtx.Email
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			switch {
			case status >= 500:
				entry.Error("Request completed with server error")
			case status >= 400:
				entry.Warn("Request completed with client error")
			default:
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint. The database is nil
// when the server runs on in-memory stores.
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "in-memory"
		if db != nil {
			dbStatus = "healthy"
			if err := db.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": "unhealthy",
					"error":    err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
