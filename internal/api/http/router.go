package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskops/support-desk/internal/api/http/handlers"
	"github.com/deskops/support-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Tags           *handlers.TagsHandler
	Customers      *handlers.CustomersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api", cfg.AuthMiddleware.OptionalAuth)

	api.Post("/customers", cfg.Customers.CreateCustomer)
	api.Get("/customers/:id", cfg.Customers.GetCustomer)

	api.Get("/tags", cfg.Tags.ListTags)

	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)
	api.Post("/tickets/:id/updates", auth.RequireAgent(), cfg.Tickets.AddUpdate)

	api.Put("/tickets/:id/tags/:tag", cfg.Tags.AttachTag)
	api.Delete("/tickets/:id/tags/:tag", cfg.Tags.DetachTag)
}
