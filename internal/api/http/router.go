package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jabana-gov/case-service/internal/api/http/handlers"
	"github.com/jabana-gov/case-service/internal/auth"
	"github.com/jabana-gov/case-service/internal/config"
	"github.com/jabana-gov/case-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Cases          *handlers.CasesHandler
	StaffCases     *handlers.StaffCasesHandler
	Track          *handlers.TrackHandler
	Reports        *handlers.ReportsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Tracking       config.TrackingConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public tracking takes no credentials, so it gets its own throttle.
	app.Get("/track/:reference",
		RateLimitMiddleware(cfg.Tracking.RatePerSecond, cfg.Tracking.Burst),
		cfg.Track.Track)

	authGroup := app.Group("/auth")
	authGroup.Post("/citizens/register", cfg.Users.Register)
	authGroup.Post("/citizens/login", cfg.Users.Login)

	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/reset/request", cfg.Staff.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Staff.ConfirmPasswordReset)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Staff.ChangePassword)

	// Citizen endpoints.
	citizen := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireCitizen())
	citizen.Post("/cases", cfg.Cases.CreateCase)
	citizen.Get("/cases", cfg.Cases.ListCases)
	citizen.Get("/cases/:id", cfg.Cases.GetCase)
	citizen.Get("/notifications", cfg.Notifications.List)
	citizen.Post("/notifications/:id/read", cfg.Notifications.MarkRead)

	// Staff endpoints.
	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Get("/me", cfg.Staff.Me)
	staff.Patch("/me/availability", cfg.Staff.SetAvailability)
	staff.Get("/team", cfg.Staff.Roster)
	staff.Get("/members", cfg.Staff.ListStaff)
	staff.Get("/members/:id", cfg.Staff.GetStaff)

	staff.Get("/cases", cfg.StaffCases.ListCases)
	staff.Get("/cases/:id", cfg.StaffCases.GetCase)
	staff.Patch("/cases/:id/status", cfg.StaffCases.UpdateStatus)
	staff.Patch("/cases/:id/priority", cfg.StaffCases.UpdatePriority)
	staff.Patch("/cases/:id/assignee", cfg.StaffCases.Assign)
	staff.Post("/cases/:id/claim", cfg.StaffCases.SelfAssign)
	staff.Post("/cases/:id/notes", cfg.StaffCases.AddNote)
	staff.Get("/cases/:id/history", cfg.StaffCases.ListHistory)

	// Reopen and reports require a supervising role.
	supervisors := staff.Group("", auth.RequireStaffRole(domain.StaffRoleExecutive, domain.StaffRoleAdmin))
	supervisors.Post("/cases/:id/reopen", cfg.StaffCases.Reopen)
	supervisors.Get("/reports", cfg.Reports.Generate)
	supervisors.Get("/reports/status-counts", cfg.Reports.StatusCounts)

	// Roster management is admin-only.
	admins := staff.Group("", auth.RequireStaffRole(domain.StaffRoleAdmin))
	admins.Post("/members", cfg.Staff.CreateStaff)
	admins.Patch("/members/:id/active", cfg.Staff.SetActive)
}
