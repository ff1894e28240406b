package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gadsdencode/Podster/internal/database"
	"github.com/gadsdencode/Podster/internal/services/storage"
	"github.com/gadsdencode/Podster/internal/utils"
)

const (
	serviceVersion     = "1.0.0"
	healthCheckTimeout = 5 * time.Second
)

type HealthHandler struct {
	db      *database.PostgresDB
	storage storage.StorageInterface
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Version   string                   `json:"version"`
	Services  map[string]ServiceHealth `json:"services"`
}

type ServiceHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

func NewHealthHandler(db *database.PostgresDB, storage storage.StorageInterface) *HealthHandler {
	return &HealthHandler{
		db:      db,
		storage: storage,
	}
}

// probe runs a single dependency check under its own timeout and reports
// the outcome with the observed latency.
func probe(ctx context.Context, name string, check func(context.Context) error) ServiceHealth {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := check(checkCtx)
	elapsed := time.Since(start).String()

	if err != nil {
		utils.LogError(ctx, name+" health check failed", err)
		return ServiceHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed,
			Error:        err.Error(),
		}
	}
	return ServiceHealth{
		Status:       "healthy",
		ResponseTime: elapsed,
	}
}

// Health godoc
// @Summary Health check endpoint
// @Description Check the health of the service and its dependencies
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Success 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   serviceVersion,
		Services:  make(map[string]ServiceHealth),
	}

	response.Services["postgres"] = probe(ctx, "PostgreSQL", h.db.Ping)
	response.Services["s3"] = probe(ctx, "S3", func(ctx context.Context) error {
		// Reachability is what matters here, not whether the key exists.
		_, err := h.storage.Exists(ctx, "health-check-probe")
		return err
	})

	status := http.StatusOK
	for _, svc := range response.Services {
		if svc.Status != "healthy" {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(status, response)
}

// Readiness godoc
// @Summary Readiness check endpoint
// @Description Check if the service is ready to accept requests
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{}
	ready := true
	if err := h.db.Ping(ctx); err != nil {
		ready = false
		checks["postgres"] = gin.H{"ready": false, "error": err.Error()}
	} else {
		checks["postgres"] = gin.H{"ready": true}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"ready":     ready,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// Liveness godoc
// @Summary Liveness check endpoint
// @Description Check if the service is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"alive":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
