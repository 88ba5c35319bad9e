package dto

import (
	"time"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// FeedbackResponse serializes composed feedback.
type FeedbackResponse struct {
	ID              uint      `json:"id"`
	EvaluationID    uint      `json:"evaluation_id"`
	Narrative       string    `json:"narrative"`
	Strengths       []string  `json:"strengths"`
	Improvements    []string  `json:"improvements"`
	Recommendations []string  `json:"recommendations"`
	Tone            string    `json:"tone"`
	Summarized      bool      `json:"summarized"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewFeedbackResponse converts a Feedback model into a DTO.
func NewFeedbackResponse(model models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:              model.ID,
		EvaluationID:    model.EvaluationID,
		Narrative:       model.Narrative,
		Strengths:       append([]string(nil), model.Strengths...),
		Improvements:    append([]string(nil), model.Improvements...),
		Recommendations: append([]string(nil), model.Recommendations...),
		Tone:            model.Tone,
		Summarized:      model.Summarized,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
