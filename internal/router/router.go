package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lexia-go-api/internal/config"
	"github.com/noah-isme/lexia-go-api/internal/handler"
	"github.com/noah-isme/lexia-go-api/internal/middleware"
	"github.com/noah-isme/lexia-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler   *handler.SubmissionHandler
	EvaluationHandler   *handler.EvaluationHandler
	FeedbackHandler     *handler.FeedbackHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Submissions (intake plus per-submission evaluation routes)
	if deps.SubmissionHandler != nil {
		submissionGroup := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissionGroup)

		if deps.EvaluationHandler != nil {
			deps.EvaluationHandler.RegisterSubmissionRoutes(submissionGroup)

			// Evaluation triggers run the full pipeline; rate limit them.
			triggerGroup := api.Group("/submissions", jwtMiddleware,
				middleware.RateLimit("evaluation_trigger", 10, time.Minute))
			deps.EvaluationHandler.RegisterTriggerRoutes(triggerGroup)
		}
	}

	// Evaluations (batch, review, feedback lookup)
	if deps.EvaluationHandler != nil {
		evaluationGroup := api.Group("/evaluations", jwtMiddleware)
		deps.EvaluationHandler.Register(evaluationGroup)

		if deps.FeedbackHandler != nil {
			deps.FeedbackHandler.RegisterEvaluationRoutes(evaluationGroup)
		}
	}

	// Feedback
	if deps.FeedbackHandler != nil {
		feedbackGroup := api.Group("/feedback", jwtMiddleware)
		deps.FeedbackHandler.Register(feedbackGroup)
	}

	// Notifications
	if deps.NotificationHandler != nil {
		notificationGroup := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notificationGroup)
	}
}
