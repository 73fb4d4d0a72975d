package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voicedesk/internal/api/http/handlers"
	"github.com/spec-kit/voicedesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Companies      *handlers.CompaniesHandler
	Webhooks       *handlers.WebhookHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/admins/register", cfg.Auth.Register)
	authGroup.Post("/admins/login", cfg.Auth.Login)

	webhooks := app.Group("/webhooks", cfg.Webhooks.Authorize)
	webhooks.Post("/voicemail", cfg.Webhooks.ReceiveVoicemail)
	webhooks.Post("/test", cfg.Webhooks.TestVoicemail)

	companies := app.Group("/companies", cfg.AuthMiddleware.Handle)
	companies.Post("/", cfg.Companies.Create)
	companies.Get("/", cfg.Companies.List)
	companies.Get("/:id", cfg.Companies.Get)
	companies.Patch("/:id", cfg.Companies.Update)
	companies.Delete("/:id", cfg.Companies.Delete)
	companies.Get("/:id/voicemails", cfg.Companies.ListVoicemails)
}
