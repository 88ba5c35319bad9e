package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/config"
	"github.com/noah-isme/lexia-go-api/internal/dto"
	"github.com/noah-isme/lexia-go-api/internal/handler"
	"github.com/noah-isme/lexia-go-api/internal/models"
	"github.com/noah-isme/lexia-go-api/internal/repository"
	"github.com/noah-isme/lexia-go-api/internal/router"
	"github.com/noah-isme/lexia-go-api/internal/service"
)

type stubRandom struct{}

func (stubRandom) Float64() float64 { return 0.5 }

func setupEvaluationApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Activity{},
		&models.Submission{},
		&models.Evaluation{},
		&models.Mistake{},
		&models.Feedback{},
		&models.Notification{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	studentRepo := repository.NewStudentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	mistakeRepo := repository.NewMistakeRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	submissionService := service.NewSubmissionService(submissionRepo, studentRepo, activityRepo, validate, logger)
	scoringService := service.NewScoringService(stubRandom{}, logger)
	mistakeDetector := service.NewMistakeDetector(mistakeRepo, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, nil, "", nil, logger)
	evaluationService := service.NewEvaluationService(
		submissionRepo, activityRepo, evaluationRepo, feedbackRepo,
		scoringService, mistakeDetector, feedbackService, notificationService,
		nil, validate, logger, service.EvaluationConfig{},
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		EvaluationHandler:   handler.NewEvaluationHandler(evaluationService, 50, logger),
		FeedbackHandler:     handler.NewFeedbackHandler(feedbackService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success, envelope.Message)
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

func TestEvaluationFlowEndToEnd(t *testing.T) {
	app, db := setupEvaluationApp(t)

	student := models.Student{Name: "Jane", Email: "jane-eval@example.com", Level: "B1"}
	require.NoError(t, db.Create(&student).Error)
	activity := models.Activity{Title: "Daily journal", Type: models.ContentTypeWriting}
	require.NoError(t, db.Create(&activity).Error)

	resp := postJSON(t, app, "/api/v1/submissions", dto.SubmissionCreateRequest{
		StudentID:   student.ID,
		ActivityID:  activity.ID,
		ContentType: models.ContentTypeWriting,
		Writing:     &dto.WritingPayload{Text: "He are happy. Its sunny.a dog runs."},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var submission dto.SubmissionResponse
	decodeData(t, resp, &submission)
	require.Equal(t, models.SubmissionStatusPending, submission.Status)

	resp = postJSON(t, app, "/api/v1/submissions/"+itoa(submission.ID)+"/evaluate", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var evaluation dto.EvaluationResponse
	decodeData(t, resp, &evaluation)
	require.Equal(t, 85, evaluation.OverallScore)
	require.NotNil(t, evaluation.GrammarScore)
	require.Equal(t, 88, *evaluation.GrammarScore)
	require.Len(t, evaluation.Mistakes, 3)

	// Re-triggering a completed submission conflicts.
	resp = postJSON(t, app, "/api/v1/submissions/"+itoa(submission.ID)+"/evaluate", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, app, "/api/v1/submissions/"+itoa(submission.ID)+"/evaluation")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var fetched dto.EvaluationResponse
	decodeData(t, resp, &fetched)
	require.Equal(t, evaluation.ID, fetched.ID)

	resp = getJSON(t, app, "/api/v1/evaluations/"+itoa(evaluation.ID)+"/feedback")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var feedback dto.FeedbackResponse
	decodeData(t, resp, &feedback)
	require.NotEmpty(t, feedback.Narrative)
	require.False(t, feedback.Summarized)

	resp = postJSON(t, app, "/api/v1/feedback/"+itoa(feedback.ID)+"/summarize", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summarized dto.FeedbackResponse
	decodeData(t, resp, &summarized)
	require.True(t, summarized.Summarized)

	score := 90.0
	resp = postJSON(t, app, "/api/v1/evaluations/"+itoa(evaluation.ID)+"/review", dto.TeacherReviewRequest{
		Notes: "nice progress",
		Score: &score,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var reviewed dto.EvaluationResponse
	decodeData(t, resp, &reviewed)
	require.True(t, reviewed.ReviewedByTeacher)

	resp = postJSON(t, app, "/api/v1/evaluations/"+itoa(evaluation.ID)+"/review", dto.TeacherReviewRequest{Notes: "again"})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Pipeline notifications were persisted for the student.
	resp = getJSON(t, app, "/api/v1/notifications")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var notifications []models.Notification
	decodeData(t, resp, &notifications)
	require.Len(t, notifications, 2)
}

func TestEvaluationRoutesRejectUnknownIDs(t *testing.T) {
	app, _ := setupEvaluationApp(t)

	resp := postJSON(t, app, "/api/v1/submissions/99999/evaluate", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, app, "/api/v1/submissions/99999/evaluation")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = getJSON(t, app, "/api/v1/evaluations/99999/feedback")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
