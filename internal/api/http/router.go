package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/status-page/internal/api/http/handlers"
	"github.com/spec-kit/status-page/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Gate          *auth.Gate
	Resolver      *auth.IdentityResolver
	Cookies       *auth.SessionCookies
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Dashboard     *handlers.DashboardHandler
	Organizations *handlers.OrganizationHandler
	Debug         *handlers.DebugHandler
	Logger        *zap.Logger
}

// RegisterRoutes wires HTTP routes. The gate runs before every route, so
// anything not on the public list needs a session.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Ready)
	api.Get("/env-check", cfg.Health.EnvCheck)
	api.Get("/debug/metrics", cfg.Debug.Metrics)

	authGroup := api.Group("/auth")
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/signout", cfg.Auth.SignOut)
	authGroup.Get("/signout", cfg.Auth.SignOutRedirect)
	authGroup.Get("/me", cfg.Auth.Me)
	authGroup.Post("/demo", cfg.Auth.Demo)
	authGroup.Get("/demo-check", cfg.Auth.DemoCheck)

	requirePrincipal := auth.RequirePrincipal(cfg.Resolver, cfg.Cookies, cfg.Logger)

	orgs := api.Group("/organizations/current")
	orgs.Get("", requirePrincipal, auth.RequireOrganization(), cfg.Organizations.Current)
	orgs.Get("/members", requirePrincipal, auth.RequirePersisted(), auth.RequireOrganization(), cfg.Organizations.Members)

	app.Get("/dashboard", requirePrincipal, cfg.Dashboard.Show)
}
