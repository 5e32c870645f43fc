package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/api/dto"
	"github.com/faya/preorder-api/internal/observability"
)

// AuthenticationRequiredMessage is the body message of every entry point denial.
const AuthenticationRequiredMessage = "Authentication required. Please provide a valid Bearer token."

// EntryPoint answers protected requests that arrive without a principal.
type EntryPoint struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewEntryPoint constructs the entry point.
func NewEntryPoint(logger *zap.Logger, metrics *observability.Metrics) *EntryPoint {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryPoint{logger: logger, metrics: metrics}
}

// Commence writes the 401 envelope. It does not continue the chain.
func (e *EntryPoint) Commence(c *fiber.Ctx) error {
	observability.LoggerFor(e.logger, c).Warn("unauthenticated request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("remote_ip", c.IP()))
	e.metrics.RecordUnauthenticated()

	return c.Status(fiber.StatusUnauthorized).JSON(
		dto.Fail(fiber.StatusUnauthorized, AuthenticationRequiredMessage, observability.TraceID(c)))
}
