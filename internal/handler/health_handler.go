package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SessionCounter reports the number of open sessions
type SessionCounter interface {
	ActiveSessions() int
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	service  string
	version  string
	redis    HealthChecker
	sessions SessionCounter
}

// NewHealthHandler creates a new HealthHandler. redis may be nil when rate limiting is off.
func NewHealthHandler(service, version string, redis HealthChecker, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{
		service:  service,
		version:  version,
		redis:    redis,
		sessions: sessions,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Status         string            `json:"status"`
	Timestamp      string            `json:"timestamp"`
	Components     map[string]string `json:"components"`
	ActiveSessions int               `json:"active_sessions"`
}

// Health returns a simple health check (liveness probe)
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   h.service,
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready returns a readiness check (readiness probe)
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{"engine": "healthy"}
	allHealthy := true

	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			components["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			components["redis"] = "healthy"
		}
	} else {
		components["redis"] = "not configured"
	}

	response := ReadyResponse{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}
	if h.sessions != nil {
		response.ActiveSessions = h.sessions.ActiveSessions()
	}

	if allHealthy {
		response.Status = "ready"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "not ready"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}
