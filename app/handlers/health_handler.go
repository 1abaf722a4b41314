package handlers

import (
	"context"
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthProbeTimeout = 3 * time.Second

// HealthHandler reports store and cache connectivity
type HealthHandler struct {
	db      *gorm.DB
	cache   *redis.Client
	version string
}

// NewHealthHandler creates a new health handler; cache may be nil when redis is disabled
func NewHealthHandler(db *gorm.DB, cache *redis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, version: version}
}

// Health
// @Summary Health check
// @Description 200 when the database answers; a cache outage is reported but does not fail the check.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthProbeTimeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "healthy",
		Database:  "up",
		Cache:     "disabled",
		Timestamp: utils.UTCNow().Format(time.RFC3339),
		Version:   h.version,
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx).Err(); err != nil {
			zap.L().Warn("health: redis ping failed", zap.Error(err))
			resp.Cache = "down"
		} else {
			resp.Cache = "up"
		}
	}

	if err := repository.Ping(ctx, h.db); err != nil {
		zap.L().Error("health: database ping failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "down"
		resp.Error = "database unreachable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
