package dto

import (
	"time"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// EvaluationResponse serializes an evaluation with its mistakes.
type EvaluationResponse struct {
	ID                 uint                   `json:"id"`
	SubmissionID       uint                   `json:"submission_id"`
	OverallScore       int                    `json:"overall_score"`
	GrammarScore       *int                   `json:"grammar_score"`
	VocabularyScore    *int                   `json:"vocabulary_score"`
	PronunciationScore *int                   `json:"pronunciation_score"`
	LogicScore         *int                   `json:"logic_score"`
	AIConfidence       float64                `json:"ai_confidence"`
	Breakdown          map[string]interface{} `json:"breakdown"`
	EvaluatedAt        time.Time              `json:"evaluated_at"`
	ReviewedByTeacher  bool                   `json:"reviewed_by_teacher"`
	TeacherNotes       string                 `json:"teacher_notes,omitempty"`
	TeacherScore       *float64               `json:"teacher_score,omitempty"`
	Mistakes           []MistakeResponse      `json:"mistakes"`
	CacheHit           bool                   `json:"cache_hit,omitempty"`
}

// MistakeResponse serializes one detected mistake.
type MistakeResponse struct {
	ID            uint   `json:"id"`
	Category      string `json:"category"`
	Severity      string `json:"severity"`
	Description   string `json:"description"`
	Suggestion    string `json:"suggestion,omitempty"`
	SpanStart     *int   `json:"span_start,omitempty"`
	SpanEnd       *int   `json:"span_end,omitempty"`
	OriginalText  string `json:"original_text,omitempty"`
	CorrectedText string `json:"corrected_text,omitempty"`
	Possible      bool   `json:"possible"`
}

// TeacherReviewRequest carries the teacher-review payload.
type TeacherReviewRequest struct {
	Notes string   `json:"notes" validate:"omitempty,min=3"`
	Score *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
}

// BatchEvaluationRequest selects how many pending submissions to process.
type BatchEvaluationRequest struct {
	Limit int `json:"limit" validate:"omitempty,gt=0,lte=100"`
}

// BatchEvaluationItem reports the outcome for one submission in a batch run.
type BatchEvaluationItem struct {
	SubmissionID uint   `json:"submission_id"`
	Status       string `json:"status"`
	EvaluationID *uint  `json:"evaluation_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BatchEvaluationResponse summarizes a batch evaluation run.
type BatchEvaluationResponse struct {
	Requested int                   `json:"requested"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Items     []BatchEvaluationItem `json:"items"`
}

// NewMistakeResponse converts a Mistake model into a DTO.
func NewMistakeResponse(model models.Mistake) MistakeResponse {
	return MistakeResponse{
		ID:            model.ID,
		Category:      model.Category,
		Severity:      model.Severity,
		Description:   model.Description,
		Suggestion:    model.Suggestion,
		SpanStart:     model.SpanStart,
		SpanEnd:       model.SpanEnd,
		OriginalText:  model.OriginalText,
		CorrectedText: model.CorrectedText,
		Possible:      model.Possible,
	}
}

// NewEvaluationResponse converts an Evaluation model into a DTO.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	mistakes := make([]MistakeResponse, 0, len(model.Mistakes))
	for _, mistake := range model.Mistakes {
		mistakes = append(mistakes, NewMistakeResponse(mistake))
	}

	return EvaluationResponse{
		ID:                 model.ID,
		SubmissionID:       model.SubmissionID,
		OverallScore:       model.OverallScore,
		GrammarScore:       model.GrammarScore,
		VocabularyScore:    model.VocabularyScore,
		PronunciationScore: model.PronunciationScore,
		LogicScore:         model.LogicScore,
		AIConfidence:       model.AIConfidence,
		Breakdown:          model.Breakdown,
		EvaluatedAt:        model.EvaluatedAt,
		ReviewedByTeacher:  model.ReviewedByTeacher,
		TeacherNotes:       model.TeacherNotes,
		TeacherScore:       model.TeacherScore,
		Mistakes:           mistakes,
	}
}
