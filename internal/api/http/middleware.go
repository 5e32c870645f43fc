package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/observability"
)

// MiddlewareConfig bundles the global middleware dependencies.
type MiddlewareConfig struct {
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Translator  *Translator
	Auth        *auth.Middleware
	Policy      *auth.Policy
	EntryPoint  *auth.EntryPoint
	TraceHeader string
	Timeout     time.Duration
	CORS        CORSConfig
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAgeSeconds  int
}

// RegisterMiddlewares attaches the global chain in order: trace id, request log, CORS,
// timeout, error translation, authentication and the access policy.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	traceHeader := cfg.TraceHeader
	if traceHeader == "" {
		traceHeader = observability.DefaultTraceHeader
	}

	app.Use(observability.TraceMiddleware(traceHeader))
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	app.Use(corsMiddleware(cfg.CORS, traceHeader))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(cfg.Translator.Middleware())
	app.Use(cfg.Auth.Handle)
	app.Use(cfg.Policy.Handler(cfg.EntryPoint))
}

func corsMiddleware(cfg CORSConfig, traceHeader string) fiber.Handler {
	maxAge := cfg.MaxAgeSeconds
	if maxAge <= 0 {
		maxAge = 3600
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Authorization,Content-Type,Accept,X-Requested-With," + traceHeader,
		ExposeHeaders:    traceHeader + ",X-Total-Count",
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
