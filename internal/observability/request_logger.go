package observability

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs method, path, status and latency of each request and feeds metrics.
// Query strings, headers and bodies are never logged. Actuator probes are not logged.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		quiet := strings.HasPrefix(c.Path(), "/actuator")

		log := LoggerFor(logger, c)
		if !quiet {
			log.Info("request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("remote_ip", c.IP()))
		}

		err := c.Next()

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		if !quiet {
			log.Info("request completed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("duration", elapsed))
		}
		metrics.RecordRequest(routePattern(c), c.Method(), status, elapsed)
		return err
	}
}

func routePattern(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return "unmatched"
}
