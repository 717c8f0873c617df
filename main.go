package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crisis-response-service/analysis"
	"crisis-response-service/analytics"
	"crisis-response-service/config"
	"crisis-response-service/database"
	"crisis-response-service/gemini"
	"crisis-response-service/handlers"
	"crisis-response-service/llm"
	"crisis-response-service/metrics"
	"crisis-response-service/middleware"
	"crisis-response-service/models"
	"crisis-response-service/monitoring"
	"crisis-response-service/notifications"
	"crisis-response-service/openai"
	"crisis-response-service/rabbitmq"
	"crisis-response-service/slack"
	"crisis-response-service/sms"
	"crisis-response-service/stubllm"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Set log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register Prometheus metrics
	metrics.Register()

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create database tables: %v", err)
	}

	// Initialize services
	authService := database.NewAuthService(db, cfg.JWTSecret)
	analyzer := analysis.NewAnalyzer(newLLMClient(cfg))
	analyticsService := analytics.NewService(db, analyzer, cfg.RiskHistoryLimit)

	smsService := sms.NewService(cfg)
	slackService := slack.NewService(cfg)
	monitorService := monitoring.NewService(db, analyzer, slackService, cfg)
	localLog := notifications.NewLocalLog(cfg.NotificationLogPath)
	dispatcher := notifications.NewDispatcher(smsService, slackService, localLog, db, cfg.BulkAlertRecipients)

	// RabbitMQ is optional; the service runs without it
	var publisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AnalyzedReportRouteKey)
		if err != nil {
			log.Printf("RabbitMQ unavailable, events disabled: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	h := handlers.NewHandlers(cfg, db, authService, analyzer, analyticsService, monitorService, dispatcher, slackService, publisher)

	go runDailySummaries(db, slackService)

	// Setup HTTP server
	router := setupRouter(cfg, h, authService)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// runDailySummaries posts a daily statistics digest to the team channel.
func runDailySummaries(db *database.Database, team *slack.Service) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for now := range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		summary, err := collectDailySummary(ctx, db, now)
		cancel()
		if err != nil {
			log.Printf("Failed to collect daily summary: %v", err)
			continue
		}
		team.SendDailySummary(summary)
	}
}

func collectDailySummary(ctx context.Context, db *database.Database, now time.Time) (slack.DailySummary, error) {
	reports, err := db.GetReportsSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return slack.DailySummary{}, err
	}
	critical := 0
	for _, r := range reports {
		if r.Severity == models.SeverityCritical {
			critical++
		}
	}
	activeAlerts, err := db.CountActiveAlerts(ctx)
	if err != nil {
		return slack.DailySummary{}, err
	}
	return slack.DailySummary{
		Date:            now,
		TotalReports:    len(reports),
		CriticalReports: critical,
		ActiveAlerts:    activeAlerts,
	}, nil
}

func newLLMClient(cfg *config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "stub":
		return stubllm.NewClient()
	default:
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTextModel)
	}
}

func setupRouter(cfg *config.Config, h *handlers.Handlers, authService *database.AuthService) *gin.Engine {
	router := gin.Default()

	if len(cfg.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Printf("Failed to set trusted proxies: %v", err)
		}
	}

	// Add gzip compression middleware
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v3")
	{
		api.GET("/health", h.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/refresh", h.RefreshToken)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(authService))
		{
			protected.POST("/auth/logout", h.Logout)
			protected.GET("/users/me", h.GetCurrentUser)

			protected.POST("/reports", h.CreateReport)
			protected.GET("/reports", h.GetMyReports)
			protected.GET("/reports/:id", h.GetReport)
			protected.GET("/reports/:id/image", h.GetReportImage)
			protected.PATCH("/reports/:id/status", h.UpdateReportStatus)

			protected.GET("/map/reports", h.GetMapReports)
			protected.GET("/map/alerts", h.GetMapAlerts)
			protected.GET("/map/shelters", h.GetMapShelters)

			protected.GET("/dashboard", h.GetDashboardSummary)
			protected.GET("/analytics/trends", h.GetTrends)
			protected.GET("/analytics/risk", h.GetRiskPrediction)
			protected.GET("/analytics/dashboard", h.GetDashboardInsights)

			protected.POST("/translate", h.Translate)

			protected.GET("/monitoring/report", h.GetMonitoringReport)
			protected.POST("/monitoring/scan", h.RunMonitoringScan)
			protected.GET("/integrations/slack/status", h.GetSlackStatus)
		}
	}

	return router
}
