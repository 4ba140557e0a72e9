package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth-service/internal/api/http/handlers"
	"github.com/spec-kit/token-auth-service/internal/auth"
)

// RoleAdmin guards the admin routes.
const RoleAdmin = "ADMIN"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Login         *handlers.LoginHandler
	API           *handlers.APIHandler
	TokenFilter   *auth.TokenFilter
	Authenticator auth.Authenticator
	Reject        auth.RejectionHandler
}

// RegisterRoutes wires HTTP routes.
//
// Every /api request passes the token filter twice: once before primary
// (HTTP Basic) authentication, where a presented token is verified or the
// filter defers, and once after it, where a freshly authenticated caller gets
// a token in the X-Auth-Token response header.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)
	app.Get("/health/prometheus", cfg.Health.Prometheus)

	app.Post("/auth/login", cfg.Login.Login)

	api := app.Group("/api",
		cfg.TokenFilter.Handle,
		auth.BasicAuth(cfg.Authenticator, cfg.Reject),
		cfg.TokenFilter.Handle,
		auth.AnonymousFallback(),
	)

	api.Get("/public/ping", cfg.API.Ping)
	api.Get("/me", auth.RequireAuthenticated(cfg.Reject), cfg.API.Me)
	api.Get("/admin/ping", auth.RequireAuthenticated(cfg.Reject), auth.RequireRole(cfg.Reject, RoleAdmin), cfg.API.Ping)
}
