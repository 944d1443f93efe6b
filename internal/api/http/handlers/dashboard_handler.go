package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-page/internal/api/dto"
	"github.com/spec-kit/status-page/internal/auth"
	"github.com/spec-kit/status-page/internal/observability"
)

// DashboardHandler serves the signed-in landing data.
type DashboardHandler struct{}

// NewDashboardHandler constructs handler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Show handles GET /dashboard. It runs behind auth.RequirePrincipal.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(fiber.Map{
		"principal": dto.PrincipalView{
			ID:             principal.ID,
			Email:          principal.Email,
			OrganizationID: principal.OrganizationID,
			Kind:           principal.Kind,
		},
	})
}

// DebugHandler exposes read-only runtime counters.
type DebugHandler struct {
	metrics *observability.Metrics
}

// NewDebugHandler constructs handler.
func NewDebugHandler(metrics *observability.Metrics) *DebugHandler {
	return &DebugHandler{metrics: metrics}
}

// Metrics handles GET /api/debug/metrics.
func (h *DebugHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
