package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// SubmissionCreateRequest describes the JSON payload for creating a
// submission. Exactly one of Speaking/Writing/Quiz must be present and must
// agree with ContentType; the service enforces that pairing.
type SubmissionCreateRequest struct {
	StudentID   uint             `json:"student_id" validate:"required,gt=0"`
	ActivityID  uint             `json:"activity_id" validate:"required,gt=0"`
	ContentType string           `json:"content_type" validate:"required,oneof=speaking writing quiz"`
	Speaking    *SpeakingPayload `json:"speaking" validate:"omitempty"`
	Writing     *WritingPayload  `json:"writing" validate:"omitempty"`
	Quiz        *QuizPayload     `json:"quiz" validate:"omitempty"`
}

// SpeakingPayload carries the speaking submission fields.
type SpeakingPayload struct {
	AudioURL        string  `json:"audio_url" validate:"omitempty,url"`
	DurationSeconds float64 `json:"duration_seconds" validate:"required,gt=0"`
	Transcript      string  `json:"transcript"`
}

// WritingPayload carries the writing submission fields.
type WritingPayload struct {
	Text string `json:"text" validate:"required,min=1"`
}

// QuizAnswerPayload is one submitted answer.
type QuizAnswerPayload struct {
	QuestionIndex int    `json:"question_index" validate:"gte=0"`
	Answer        string `json:"answer" validate:"required"`
}

// QuizPayload carries the quiz submission fields.
type QuizPayload struct {
	Answers []QuizAnswerPayload `json:"answers" validate:"required,min=1,dive"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID          uint                `json:"id"`
	StudentID   uint                `json:"student_id"`
	ActivityID  uint                `json:"activity_id"`
	ContentType string              `json:"content_type"`
	Content     json.RawMessage     `json:"content"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Evaluation  *EvaluationResponse `json:"evaluation,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		ActivityID:  model.ActivityID,
		ContentType: model.ContentType,
		Content:     json.RawMessage(model.Content),
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if model.Evaluation != nil {
		evaluation := NewEvaluationResponse(*model.Evaluation)
		response.Evaluation = &evaluation
	}

	return response
}
