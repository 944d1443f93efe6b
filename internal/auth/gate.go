package auth

import (
	"net/url"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Access is the classification of a request path.
type Access int

const (
	AccessProtected Access = iota
	AccessPublic
)

func (a Access) String() string {
	if a == AccessPublic {
		return "public"
	}
	return "protected"
}

// SignInPath is where unauthenticated page requests are sent.
const SignInPath = "/sign-in"

// DefaultPublicPaths are reachable without a session. Each entry also covers
// its "/"-delimited sub-paths, except the root which only matches itself.
var DefaultPublicPaths = []string{
	"/",
	SignInPath,
	"/sign-up",
	"/forgot-password",
	"/reset-password",
	"/status",
	"/api/public",
	"/api/auth",
	"/api/health",
	"/api/env-check",
	"/api/debug",
	"/debug",
	"/health",
	"/_next",
	"/static",
	"/assets",
	"/favicon.ico",
	"/robots.txt",
}

// Gate is the per-request authorization decision point. It never touches the
// user store: a valid signature is enough to pass.
type Gate struct {
	codec   *TokenCodec
	cookies *SessionCookies
	public  []string
	logger  *zap.Logger
}

// NewGate builds a gate. A nil publicPaths uses DefaultPublicPaths.
func NewGate(codec *TokenCodec, cookies *SessionCookies, publicPaths []string, logger *zap.Logger) *Gate {
	if publicPaths == nil {
		publicPaths = DefaultPublicPaths
	}
	normalized := make([]string, 0, len(publicPaths))
	for _, p := range publicPaths {
		normalized = append(normalized, cleanPath(p))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{codec: codec, cookies: cookies, public: normalized, logger: logger}
}

// Classify decides whether a path needs a session.
func (g *Gate) Classify(requestPath string) Access {
	p := cleanPath(requestPath)
	for _, entry := range g.public {
		if p == entry {
			return AccessPublic
		}
		if entry != "/" && strings.HasPrefix(p, entry+"/") {
			return AccessPublic
		}
	}
	return AccessProtected
}

// Handle is the fiber middleware enforcing the classification.
func (g *Gate) Handle(c *fiber.Ctx) error {
	if g.Classify(c.Path()) == AccessPublic {
		return c.Next()
	}

	identity, ok := g.authenticate(c)
	if !ok {
		return rejectUnauthenticated(c)
	}

	c.SetUserContext(WithIdentity(c.UserContext(), identity))
	return c.Next()
}

// authenticate never fails loudly; anything unexpected counts as no session.
func (g *Gate) authenticate(c *fiber.Ctx) (identity Identity, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Warn("session check panicked; treating request as unauthenticated", zap.Any("panic", r))
			identity, ok = Identity{}, false
		}
	}()

	token, found := g.cookies.Extract(c)
	if !found {
		return Identity{}, false
	}
	return g.codec.Decode(token)
}

// rejectUnauthenticated redirects pages to sign-in and answers API calls with 401.
func rejectUnauthenticated(c *fiber.Ctx) error {
	original := c.Path()
	if isAPIPath(original) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.Redirect(SignInRedirect(original), fiber.StatusFound)
}

// SignInRedirect builds the sign-in location returning the client to originalPath.
func SignInRedirect(originalPath string) string {
	query := url.Values{"redirect_url": []string{originalPath}}
	return SignInPath + "?" + query.Encode()
}

func isAPIPath(p string) bool {
	p = cleanPath(p)
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

// cleanPath folds case the way fiber's default router does, so a path is
// classified by the same route that will serve it.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.ToLower(path.Clean(p))
}
