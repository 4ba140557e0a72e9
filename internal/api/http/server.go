package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/token-auth-service/internal/observability"
)

// ServerConfig holds what NewApp needs beyond the routes.
type ServerConfig struct {
	Name    string
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// NewApp builds the fiber application with middlewares and routes.
func NewApp(cfg ServerConfig, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(cfg.Logger, cfg.Metrics),
	})
	RegisterMiddlewares(app, cfg.Logger, cfg.Metrics, cfg.Timeout)
	RegisterRoutes(app, routes)
	return app
}
