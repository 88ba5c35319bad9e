package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lexia-go-api/internal/dto"
	"github.com/noah-isme/lexia-go-api/internal/service"
	"github.com/noah-isme/lexia-go-api/internal/utils"
)

// EvaluationHandler manages evaluation pipeline endpoints.
type EvaluationHandler struct {
	service    service.EvaluationService
	batchLimit int
	logger     zerolog.Logger
}

// NewEvaluationHandler builds an evaluation handler instance.
func NewEvaluationHandler(service service.EvaluationService, batchLimit int, logger zerolog.Logger) *EvaluationHandler {
	if batchLimit <= 0 {
		batchLimit = 50
	}
	return &EvaluationHandler{
		service:    service,
		batchLimit: batchLimit,
		logger:     logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// RegisterTriggerRoutes attaches the submission-scoped pipeline triggers.
func (h *EvaluationHandler) RegisterTriggerRoutes(router fiber.Router) {
	router.Post("/:id/evaluate", h.evaluate)
}

// RegisterSubmissionRoutes attaches the submission-scoped read routes.
func (h *EvaluationHandler) RegisterSubmissionRoutes(router fiber.Router) {
	router.Get("/:id/evaluation", h.getBySubmission)
}

// Register attaches the evaluation-scoped routes.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/batch", h.evaluateBatch)
	router.Post("/:id/review", h.review)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluation, err := h.service.Evaluate(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission evaluated", evaluation)
}

func (h *EvaluationHandler) evaluateBatch(c *fiber.Ctx) error {
	var payload dto.BatchEvaluationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	limit := payload.Limit
	if limit <= 0 || limit > h.batchLimit {
		limit = h.batchLimit
	}

	result, err := h.service.EvaluateBatch(c.Context(), limit)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "batch evaluation completed", result)
}

func (h *EvaluationHandler) getBySubmission(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluation, err := h.service.GetBySubmissionID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation retrieved", evaluation)
}

func (h *EvaluationHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TeacherReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluation, err := h.service.Review(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation reviewed", evaluation)
}

func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrEvaluationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evaluation not found")
	case errors.Is(err, service.ErrEvaluationInProgress):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSubmissionAlreadyEvaluated):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEvaluationAlreadyReviewed):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnsupportedContentType):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrQuizQuestionsMissing):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
