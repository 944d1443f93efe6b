package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-page/internal/api/dto"
	"github.com/spec-kit/status-page/internal/auth"
	"github.com/spec-kit/status-page/internal/service"
)

// OrganizationHandler serves the caller's own tenant.
type OrganizationHandler struct {
	service *service.OrganizationService
}

// NewOrganizationHandler constructs handler.
func NewOrganizationHandler(svc *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: svc}
}

// Current handles GET /api/organizations/current.
func (h *OrganizationHandler) Current(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	org, err := h.service.Current(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"organization": dto.NewOrganizationView(org)})
}

// Members handles GET /api/organizations/current/members.
func (h *OrganizationHandler) Members(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	members, err := h.service.Members(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"members": dto.NewMemberViews(members)})
}
