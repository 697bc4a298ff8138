package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Tickets *handlers.TicketsHandler
	AI      *handlers.AIHandler
	Metrics *handlers.MetricsHandler
	// AuthMiddleware, when set, guards the ticket routes.
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics/summary", cfg.Metrics.Summary)

	app.Post("/register", cfg.Users.Register)
	app.Post("/login", cfg.Users.Login)
	app.Get("/users", cfg.Users.ListUsers)

	app.Post("/api/ai-response", cfg.AI.Respond)

	var guards []fiber.Handler
	if cfg.AuthMiddleware != nil {
		guards = append(guards, cfg.AuthMiddleware.Handle)
	}
	tickets := app.Group("/tickets", guards...)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
