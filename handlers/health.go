package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/markbreneman/GuysMusicApp/config"
)

// HealthHandler handles health and status endpoints.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthCheck reports basic liveness.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "guysmusicapp",
		"timestamp": time.Now().Unix(),
	})
}

// APIStatus reports where the engine keeps its data.
func (h *HealthHandler) APIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":       "GuysMusicApp engine is running",
		"data_location": config.GetDataLocation(),
	})
}
