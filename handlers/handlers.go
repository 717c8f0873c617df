package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crisis-response-service/analysis"
	"crisis-response-service/analytics"
	"crisis-response-service/config"
	"crisis-response-service/database"
	"crisis-response-service/monitoring"
	"crisis-response-service/notifications"
	"crisis-response-service/rabbitmq"
	"crisis-response-service/slack"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	cfg        *config.Config
	db         *database.Database
	auth       *database.AuthService
	analyzer   *analysis.Analyzer
	analytics  *analytics.Service
	monitor    *monitoring.Service
	dispatcher *notifications.Dispatcher
	slack      *slack.Service
	publisher  *rabbitmq.Publisher // nil when AMQP is not configured
}

// NewHandlers creates new HTTP handlers
func NewHandlers(
	cfg *config.Config,
	db *database.Database,
	auth *database.AuthService,
	analyzer *analysis.Analyzer,
	analyticsSvc *analytics.Service,
	monitor *monitoring.Service,
	dispatcher *notifications.Dispatcher,
	slackSvc *slack.Service,
	publisher *rabbitmq.Publisher,
) *Handlers {
	return &Handlers{
		cfg:        cfg,
		db:         db,
		auth:       auth,
		analyzer:   analyzer,
		analytics:  analyticsSvc,
		monitor:    monitor,
		dispatcher: dispatcher,
		slack:      slackSvc,
		publisher:  publisher,
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "crisis-response-service",
	})
}

// userID pulls the authenticated user ID set by the auth middleware.
func userID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}
