package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rubrica-dev/rubrica-api/internal/config"
	"github.com/rubrica-dev/rubrica-api/internal/handler"
	"github.com/rubrica-dev/rubrica-api/internal/middleware"
	"github.com/rubrica-dev/rubrica-api/internal/models"
	"github.com/rubrica-dev/rubrica-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RubricHandler            *handler.RubricHandler
	EvaluationHandler        *handler.EvaluationHandler
	StudentEvaluationHandler *handler.StudentEvaluationHandler
	GroupHandler             *handler.GroupHandler
	RankingHandler           *handler.RankingHandler
	NotificationHandler      *handler.NotificationHandler
	JWTMiddleware            fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	staffOnly := middleware.RequireRole(models.RoleStaff, models.RoleAdmin)

	if deps.RubricHandler != nil {
		rubrics := api.Group("/rubrics", jwtMiddleware)
		deps.RubricHandler.Register(rubrics, adminOnly)
	}

	if deps.EvaluationHandler != nil {
		evaluations := api.Group("/evaluations", jwtMiddleware)
		// Score writes get a per-user limiter: bulk upserts from panel
		// dashboards arrive in bursts.
		evaluations.Use("/:id/scores", middleware.RateLimit("scores", 30, time.Minute))
		deps.EvaluationHandler.Register(evaluations, staffOnly, adminOnly)
	}

	if deps.StudentEvaluationHandler != nil {
		studentEvaluations := api.Group("/student-evaluations", jwtMiddleware)
		deps.StudentEvaluationHandler.Register(studentEvaluations, staffOnly, adminOnly)
	}

	if deps.GroupHandler != nil {
		groups := api.Group("/groups", jwtMiddleware)
		deps.GroupHandler.RegisterGroups(groups, adminOnly)

		schedules := api.Group("/schedules", jwtMiddleware)
		deps.GroupHandler.RegisterSchedules(schedules, adminOnly)

		if deps.EvaluationHandler != nil {
			deps.EvaluationHandler.RegisterScheduleRoutes(schedules, staffOnly)
		}
		if deps.StudentEvaluationHandler != nil {
			deps.StudentEvaluationHandler.RegisterScheduleRoutes(schedules)
		}
	}

	if deps.RankingHandler != nil {
		rankings := api.Group("/rankings", jwtMiddleware)
		deps.RankingHandler.Register(rankings, staffOnly)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
