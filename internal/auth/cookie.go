package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the fixed name of the session cookie.
const SessionCookieName = "sp_session"

// SessionCookies binds session tokens to HTTP responses and reads them back.
type SessionCookies struct {
	secure bool
}

// NewSessionCookies builds the manager. secure should be true only in production.
func NewSessionCookies(secure bool) *SessionCookies {
	return &SessionCookies{secure: secure}
}

// Attach sets the session cookie, replacing any previous value.
func (s *SessionCookies) Attach(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear expires the session cookie under the same name and path.
func (s *SessionCookies) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Extract returns the caller's token, preferring an Authorization bearer
// header over the cookie.
func (s *SessionCookies) Extract(c *fiber.Ctx) (string, bool) {
	if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
		return token, true
	}
	if token := strings.TrimSpace(c.Cookies(SessionCookieName)); token != "" {
		return token, true
	}
	return "", false
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
