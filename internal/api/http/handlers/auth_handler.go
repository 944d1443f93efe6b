package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/status-page/internal/api/dto"
	"github.com/spec-kit/status-page/internal/auth"
	"github.com/spec-kit/status-page/internal/service"
)

const invalidCredentialsMessage = "Invalid email or password"

// AuthHandler exposes the session endpoints under /api/auth.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *auth.SessionCookies
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.SessionCookies) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "Email and password are required")
	}

	session, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": invalidCredentialsMessage})
		}
		return err
	}

	h.cookies.Attach(c, session.Token)
	return c.JSON(sessionResponse(session, ""))
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	session, err := h.auth.SignUp(c.UserContext(), service.SignUpInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		return err
	}

	h.cookies.Attach(c, session.Token)
	return c.Status(http.StatusCreated).JSON(sessionResponse(session, ""))
}

// SignOut handles POST /api/auth/signout.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	h.endSession(c)
	return c.JSON(fiber.Map{"success": true})
}

// SignOutRedirect handles GET /api/auth/signout for plain links.
func (h *AuthHandler) SignOutRedirect(c *fiber.Ctx) error {
	h.endSession(c)
	return c.Redirect("/", http.StatusFound)
}

func (h *AuthHandler) endSession(c *fiber.Ctx) {
	if token, ok := h.cookies.Extract(c); ok {
		h.auth.SignOut(c.UserContext(), token)
	}
	h.cookies.Clear(c)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	token, ok := h.cookies.Extract(c)
	if !ok {
		return notAuthenticated(c)
	}

	principal, err := h.auth.CurrentPrincipal(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			h.cookies.Clear(c)
		}
		return notAuthenticated(c)
	}

	return c.JSON(dto.MeResponse{
		User: dto.MeUser{
			ID:             principal.ID,
			Email:          principal.Email,
			OrganizationID: principal.OrganizationID,
		},
		IsDemo: principal.IsDemo(),
	})
}

// Demo handles POST /api/auth/demo.
func (h *AuthHandler) Demo(c *fiber.Ctx) error {
	var req dto.DemoLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	session, err := h.auth.DemoLogin(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	h.cookies.Attach(c, session.Token)
	return c.JSON(sessionResponse(session, "Demo login successful"))
}

// DemoCheck handles GET /api/auth/demo-check.
func (h *AuthHandler) DemoCheck(c *fiber.Ctx) error {
	resp := dto.DemoCheckResponse{DemoMode: h.auth.DemoMode(), Message: "Demo mode is not enabled"}
	if resp.DemoMode {
		resp.Message = "Demo mode is enabled"
	}
	return c.JSON(resp)
}

func notAuthenticated(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"error": "Not authenticated",
		"user":  nil,
	})
}

func sessionResponse(session *service.Session, message string) dto.SessionResponse {
	return dto.SessionResponse{
		Success:      true,
		User:         dto.NewUserView(session.User),
		Organization: dto.NewOrganizationView(session.Organization),
		IsDemo:       session.IsDemo,
		Message:      message,
	}
}
