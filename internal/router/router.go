package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/code-quest-api/internal/config"
	"github.com/noah-isme/code-quest-api/internal/handler"
	"github.com/noah-isme/code-quest-api/internal/middleware"
	"github.com/noah-isme/code-quest-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	QuestionHandler *handler.QuestionHandler
	SolutionHandler *handler.SolutionHandler
	AuthHandler     *handler.AuthHandler
	HealthProbes    map[string]handler.HealthProbe
	// SubmitRateLimit caps grading requests per client and minute. Zero disables the limit.
	SubmitRateLimit int
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/", handler.Root(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(app.Group("/questions"))
	}

	if deps.SolutionHandler != nil {
		var submitMiddleware []fiber.Handler
		if deps.SubmitRateLimit > 0 {
			submitMiddleware = append(submitMiddleware, middleware.RateLimit("submit", deps.SubmitRateLimit, time.Minute))
		}
		deps.SolutionHandler.Register(app, submitMiddleware...)
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(app)
	}
}
