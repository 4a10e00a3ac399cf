package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/solutionsheet-api/internal/config"
	"github.com/noah-isme/solutionsheet-api/internal/handler"
	"github.com/noah-isme/solutionsheet-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler    *handler.AssignmentHandler
	SolutionSheetHandler *handler.SolutionSheetHandler
	HealthProbes         map[string]handler.HealthProbe
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	v2 := app.Group("/api/v2", jwtMiddleware)

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(v2.Group("/tutorial/assignments"))
	}

	// Feedback plugins (solution sheet view, settings, override)
	if deps.SolutionSheetHandler != nil {
		deps.SolutionSheetHandler.Register(v2)
	}
}
