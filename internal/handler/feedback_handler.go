package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lexia-go-api/internal/service"
	"github.com/noah-isme/lexia-go-api/internal/utils"
)

// FeedbackHandler serves composed feedback.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler builds a feedback handler instance.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *FeedbackHandler) Register(router fiber.Router) {
	router.Post("/:id/summarize", h.summarize)
}

// RegisterEvaluationRoutes attaches the evaluation-scoped feedback routes.
func (h *FeedbackHandler) RegisterEvaluationRoutes(router fiber.Router) {
	router.Get("/:id/feedback", h.getByEvaluation)
}

func (h *FeedbackHandler) getByEvaluation(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	feedback, err := h.service.GetByEvaluationID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback retrieved", feedback)
}

func (h *FeedbackHandler) summarize(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	feedback, err := h.service.Summarize(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback summarized", feedback)
}

func (h *FeedbackHandler) handleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrFeedbackNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "feedback not found")
	}
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
