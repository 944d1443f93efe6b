package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-page/internal/config"
	"github.com/spec-kit/status-page/internal/persistence"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness, readiness and environment probes.
type HealthHandler struct {
	cfg      *config.Config
	postgres Pinger
	redis    Pinger
	now      func() time.Time
}

// NewHealthHandler returns a new handler instance. redis may be nil when
// nothing depends on it.
func NewHealthHandler(cfg *config.Config, postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{cfg: cfg, postgres: postgres, redis: redis, now: time.Now}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// Ready reports service readiness by checking dependencies. A database that
// was never configured does not make the service unready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	check := func(name string, dep Pinger) {
		if dep == nil {
			return
		}
		err := dep.Ping(ctx)
		switch {
		case err == nil:
			depStatus[name] = "ok"
		case errors.Is(err, persistence.ErrDatabaseNotConfigured):
			depStatus[name] = "not_configured"
		default:
			depStatus[name] = "unavailable"
			ready = false
		}
	}
	check("postgres", h.postgres)
	check("redis", h.redis)

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":        "one or more dependencies unavailable",
		"code":         "DEPENDENCY_UNAVAILABLE",
		"dependencies": depStatus,
	})
}

// EnvCheck reports which settings are present. Values are never returned.
func (h *HealthHandler) EnvCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"environment": fiber.Map{
			"production":          h.cfg.App.IsProduction(),
			"demoMode":            h.cfg.Auth.DemoMode,
			"jwtSecretConfigured": h.cfg.Auth.JWTSecret != "",
			"databaseConfigured":  h.cfg.Postgres.DSN != "",
			"publicUrlConfigured": h.cfg.App.PublicURL != "",
			"revocationEnabled":   h.cfg.Auth.RevocationEnabled,
		},
		"version":    h.cfg.App.Version,
		"serverTime": h.now().UTC().Format(time.RFC3339),
	})
}
