package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aarnav1729/premier-support-hub/internal/api/http/handlers"
	"github.com/aarnav1729/premier-support-hub/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Employees      *handlers.EmployeeHandler
	Tickets        *handlers.TicketsHandler
	Chat           *handlers.ChatHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/request-otp", cfg.Auth.RequestOTP)
	authGroup.Post("/verify-otp", cfg.Auth.VerifyOTP)
	authGroup.Post("/logout", cfg.Auth.Logout)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Get("/emp/me", cfg.Employees.Me)

	mep := protected.Group("/mep")
	mep.Post("/", cfg.Tickets.CreateMEP)
	mep.Get("/", cfg.Tickets.ListMEP)
	mep.Get("/:ticketNumber", cfg.Tickets.GetMEP)
	mep.Patch("/:ticketNumber/status", cfg.Tickets.UpdateMEPStatus)
	mep.Patch("/:ticketNumber/feedback", cfg.Tickets.UpdateMEPFeedback)

	vr := protected.Group("/vr")
	vr.Post("/", cfg.Tickets.CreateVR)
	vr.Get("/", cfg.Tickets.ListVR)
	vr.Get("/:ticketNumber", cfg.Tickets.GetVR)
	vr.Patch("/:ticketNumber/status", cfg.Tickets.UpdateVRStatus)
	vr.Patch("/:ticketNumber/driver", cfg.Tickets.UpdateVRDriver)
	vr.Patch("/:ticketNumber/feedback", cfg.Tickets.UpdateVRFeedback)

	protected.Get("/history/:ticketNumber", cfg.Tickets.History)
	protected.Get("/chat/:ticketNumber", cfg.Chat.List)
	protected.Post("/chat/:ticketNumber", cfg.Chat.Post)

	protected.Get("/analytics/summary", cfg.Dashboard.Analytics)

	hod := protected.Group("/hod", auth.RequireHOD())
	hod.Get("/tickets", cfg.Dashboard.Tickets)
	hod.Get("/mep", cfg.Dashboard.MEPSummary)
	hod.Get("/vr", cfg.Dashboard.VRSummary)
	hod.Get("/export.xlsx", cfg.Dashboard.Export)
}
