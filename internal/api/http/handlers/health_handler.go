package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/observability"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness, readiness and info probes.
type HealthHandler struct {
	serviceName string
	version     string
	env         string
	deps        []Pinger
	logger      *zap.Logger
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version, env string, logger *zap.Logger, deps ...Pinger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{serviceName: serviceName, version: version, env: env, deps: deps, logger: logger}
}

// Status handles GET /api/v1/health with the standard envelope.
func (h *HealthHandler) Status(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "Service is running", fiber.Map{
		"status":  "UP",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "UP"})
}

// Ready reports service readiness by pinging every dependency. Failure details are
// logged, never returned.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	components := fiber.Map{}
	ready := true
	for _, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			observability.LoggerFor(h.logger, c).Warn("readiness check failed",
				zap.String("dependency", dep.Name()), zap.Error(err))
			components[dep.Name()] = fiber.Map{"status": "DOWN"}
			ready = false
			continue
		}
		components[dep.Name()] = fiber.Map{"status": "UP"}
	}

	if ready {
		return c.JSON(fiber.Map{"status": "UP", "components": components})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "DOWN", "components": components})
}

// Info handles GET /actuator/info.
func (h *HealthHandler) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"app": fiber.Map{
			"name":        h.serviceName,
			"version":     h.version,
			"environment": h.env,
		},
	})
}
