package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/identra/identra/internal/application/service"
	"github.com/identra/identra/pkg/logger"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	app *service.AuthAppService
	log logger.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(app *service.AuthAppService, log logger.Logger) *HealthHandler {
	return &HealthHandler{app: app, log: log.WithComponent("health")}
}

// Live reports process liveness only. GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now().UTC()})
}

// Ready confirms the service can reach its storage backend. GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.app.CheckStorage(c.Request.Context()); err != nil {
		h.log.Warn(c.Request.Context(), "readiness check failed", logger.Fields{"error": err.Error()})
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": time.Now().UTC()})
}
