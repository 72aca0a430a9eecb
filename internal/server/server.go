// Package server assembles the HTTP application.
package server

import (
	"context"
	"time"

	"gamewish/internal/handlers"
	"gamewish/internal/middleware"
	"gamewish/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// bodyLimit leaves room for a full-size avatar plus multipart framing.
const bodyLimit = services.MaxAvatarSize + 1<<20

// HealthCheck reports whether an optional backend is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the services the HTTP layer is built from.
type Deps struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
	Games    *services.GameService
	Log      *zap.Logger

	// Checks are reported by /health under their map key.
	Checks map[string]HealthCheck
	// RequestLog enables Fiber's request logger.
	RequestLog bool
}

// NewApp builds the Fiber app with every route registered.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "gamewish",
		BodyLimit: bodyLimit,
	})

	app.Use(recover.New())
	if d.RequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", healthHandler(d.Checks))

	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(d.Auth, d.Log)

	handlers.NewAuthHandler(d.Auth, d.Log).RegisterRoutes(apiV1)
	handlers.NewProfileHandler(d.Profiles, d.Log).RegisterRoutes(apiV1, auth)
	handlers.NewGameHandler(d.Games, d.Log).RegisterRoutes(apiV1, auth)

	return app
}

func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		deps := fiber.Map{}

		for name, check := range checks {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			err := check(ctx)
			cancel()
			if err != nil {
				deps[name] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
				continue
			}
			deps[name] = "connected"
		}

		return c.Status(code).JSON(fiber.Map{
			"status":       status,
			"time":         time.Now().Format(time.RFC3339),
			"dependencies": deps,
		})
	}
}
