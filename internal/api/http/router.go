package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-portal/internal/api/http/handlers"
	"github.com/spec-kit/ops-portal/internal/auth"
	"github.com/spec-kit/ops-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Staff          *handlers.StaffHandler
	Photos         *handlers.PhotosHandler
	Imports        *handlers.ImportsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role gates here are coarse; services
// apply the per-record rules.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	managers := auth.RequireRole(domain.RoleKitchenManager, domain.RoleClusterManager)

	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	protected.Get("/users", auth.RequireRole(domain.RoleAdmin, domain.RoleClusterManager), cfg.Users.ListUsers)
	protected.Post("/users", adminOnly, cfg.Users.CreateUser)
	protected.Post("/users/:id/deactivate", adminOnly, cfg.Users.DeactivateUser)
	protected.Put("/users/:id/territory", adminOnly, cfg.Users.AssignTerritory)
	protected.Get("/locations", cfg.Users.ListLocations)
	protected.Post("/locations", adminOnly, cfg.Users.CreateLocation)

	protected.Post("/tickets", cfg.Tickets.SubmitTicket)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/export", cfg.Tickets.ExportTickets)
	protected.Get("/tickets/reassign-candidates",
		auth.RequireRole(domain.RoleOwner, domain.RoleAdmin), cfg.Tickets.ReassignCandidates)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Post("/tickets/:id/:action", cfg.Tickets.Transition)
	protected.Get("/admin/summary", adminOnly, cfg.Tickets.Summary)
	protected.Get("/admin/metrics", adminOnly, cfg.Health.Metrics)

	protected.Post("/kitchen-logs", managers, cfg.Staff.CreateLog)
	protected.Get("/kitchen-logs", cfg.Staff.ListLogs)
	protected.Post("/kitchen-logs/:id/acknowledge", cfg.Staff.AcknowledgeLog)
	protected.Get("/me/performance", cfg.Staff.MyPerformance)
	protected.Get("/me/salary-slips", cfg.Staff.MySalarySlips)

	protected.Post("/order-photos", cfg.Photos.Record)
	protected.Get("/order-photos", cfg.Photos.List)

	protected.Post("/imports/:kind", adminOnly, cfg.Imports.Upload)

	protected.Get("/notifications", cfg.Notifications.List)
	protected.Post("/notifications/:id/read", cfg.Notifications.MarkRead)
}
