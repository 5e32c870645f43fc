package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faya/preorder-api/internal/api/http/handlers"
	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Menu    *handlers.MenuHandler
	Orders  *handlers.OrdersHandler
	Metrics fiber.Handler
}

// RegisterRoutes wires HTTP routes. Which of them need a principal is decided by the
// access policy; role checks happen here.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	actuator := app.Group("/actuator")
	actuator.Get("/health", cfg.Health.Live)
	actuator.Get("/health/liveness", cfg.Health.Live)
	actuator.Get("/health/readiness", cfg.Health.Ready)
	actuator.Get("/info", cfg.Health.Info)
	if cfg.Metrics != nil {
		actuator.Get("/prometheus", auth.RequireRole(domain.RoleAdmin), cfg.Metrics)
	}

	v1 := app.Group("/api/v1")
	v1.Get("/health", cfg.Health.Status)

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/me", auth.RequireAuthenticated(), cfg.Auth.Me)

	menu := v1.Group("/menu")
	menu.Get("/", cfg.Menu.List)
	menu.Get("/:id", cfg.Menu.Get)

	orders := v1.Group("/orders", auth.RequireAuthenticated())
	orders.Post("/", auth.RequireRole(domain.RoleStudent), cfg.Orders.Create)
	orders.Get("/", cfg.Orders.List)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Post("/:id/cancel", auth.RequireRole(domain.RoleStudent), cfg.Orders.Cancel)
	orders.Patch("/:id/status", auth.RequireRole(domain.RoleVendor, domain.RoleAdmin), cfg.Orders.UpdateStatus)
}
