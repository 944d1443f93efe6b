package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UnmatchedRoute is the counter bucket for requests that never reached a
// route handler: unknown paths, and callers turned away by global middleware.
const UnmatchedRoute = "unmatched"

// RouteKey names the route pattern that served the request. Raw paths are
// never used, so counters stay bounded whatever clients send.
func RouteKey(c *fiber.Ctx) string {
	r := c.Route()
	// only app.Use middleware is mounted at "/"; fiber hands back an empty
	// route when nothing matched at all
	if r == nil || len(r.Handlers) == 0 || r.Path == "" || r.Path == "/" {
		return UnmatchedRoute
	}
	return r.Path
}

// RequestLogger logs one line per request and feeds the request counters.
// Only the path is logged; query strings may carry redirect targets and
// headers carry tokens.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
		}

		metrics.RecordRequest(RouteKey(c), c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
		return err
	}
}
