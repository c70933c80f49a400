package handlers

import (
	"time"

	"smartlocker/internal/config"
	"smartlocker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
	}
}

// Check returns basic liveness
// @Summary Health check
// @Description Basic health check endpoint
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return response.Success(c, "Service is healthy", fiber.Map{
		"status": "ok",
		"uptime": time.Since(h.startTime).String(),
	})
}

// Ready returns readiness including database connectivity
// @Summary Readiness check
// @Description Health check including database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if err := config.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Database is not reachable",
		})
	}

	return response.Success(c, "Service is ready", fiber.Map{
		"status":   "ok",
		"database": "connected",
		"uptime":   time.Since(h.startTime).String(),
	})
}
