package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/leave-service/internal/api/http/handlers"
	"github.com/spec-kit/leave-service/internal/auth"
	"github.com/spec-kit/leave-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Leaves         *handlers.LeavesHandler
	Review         *handlers.ReviewHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Users.Register)
	app.Post("/auth/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/logout", cfg.Users.Logout)
	protected.Get("/account", cfg.Users.Account)

	protected.Post("/leaves", auth.RequireRole(domain.RoleEmployee), cfg.Leaves.Submit)
	protected.Get("/leaves", auth.RequireRole(domain.RoleEmployee), cfg.Leaves.ListOwn)
	// single-request view is owner-or-HR; the service enforces ownership
	protected.Get("/leaves/:id", cfg.Leaves.Get)

	hr := protected.Group("/hr", auth.RequireRole(domain.RoleHR))
	hr.Get("/leaves/pending", cfg.Review.ListPending)
	hr.Get("/leaves/recent", cfg.Review.ListRecent)
	hr.Post("/leaves/:id/review", cfg.Review.Review)
}
