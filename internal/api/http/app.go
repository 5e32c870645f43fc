package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// AppConfig bundles everything NewApp wires together.
type AppConfig struct {
	Name         string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Middleware   MiddlewareConfig
	Routes       RouteConfig
}

// NewApp builds the fiber application with the global middleware chain and routes.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          cfg.Middleware.Translator.ErrorHandler,
	})
	RegisterMiddlewares(app, cfg.Middleware)
	RegisterRoutes(app, cfg.Routes)
	return app
}
