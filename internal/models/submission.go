package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Content types a submission can carry.
const (
	ContentTypeSpeaking = "speaking"
	ContentTypeWriting  = "writing"
	ContentTypeQuiz     = "quiz"
)

// Submission lifecycle statuses. Transitions are monotonic along
// pending → evaluating → {completed, failed}; failed is retryable.
const (
	SubmissionStatusPending    = "pending"
	SubmissionStatusEvaluating = "evaluating"
	SubmissionStatusCompleted  = "completed"
	SubmissionStatusFailed     = "failed"
)

// Submission is one student attempt at an activity. The content column holds
// the type-tagged payload; ContentType selects the shape.
type Submission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StudentID   uint           `gorm:"not null;index" json:"student_id"`
	ActivityID  uint           `gorm:"not null;index" json:"activity_id"`
	ContentType string         `gorm:"size:32;not null" json:"content_type"`
	Content     datatypes.JSON `json:"content"`
	Status      string         `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Student     Student        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Activity    Activity       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"activity"`
	Evaluation  *Evaluation    `json:"evaluation,omitempty"`
}

// SpeakingContent is the payload of a speaking submission. The transcript is
// optional; audio duration is always known.
type SpeakingContent struct {
	AudioURL        string  `json:"audio_url"`
	DurationSeconds float64 `json:"duration_seconds"`
	Transcript      string  `json:"transcript,omitempty"`
}

// WritingContent is the payload of a writing submission.
type WritingContent struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
	CharCount int    `json:"char_count"`
}

// QuizAnswer pairs a question index with the submitted answer.
type QuizAnswer struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// QuizContent is the payload of a quiz submission.
type QuizContent struct {
	Answers []QuizAnswer `json:"answers"`
}

// SubmissionContent is the closed set of payload shapes a submission can
// carry. Consumers switch exhaustively over the concrete types.
type SubmissionContent interface {
	isSubmissionContent()
}

func (SpeakingContent) isSubmissionContent() {}
func (WritingContent) isSubmissionContent()  {}
func (QuizContent) isSubmissionContent()     {}

// DecodeContent unmarshals the payload into the shape selected by
// ContentType. Unknown tags surface here, at the deserialization boundary.
func (s Submission) DecodeContent() (SubmissionContent, error) {
	switch s.ContentType {
	case ContentTypeSpeaking:
		var content SpeakingContent
		if err := json.Unmarshal(s.Content, &content); err != nil {
			return nil, fmt.Errorf("decode speaking content: %w", err)
		}
		return content, nil
	case ContentTypeWriting:
		var content WritingContent
		if err := json.Unmarshal(s.Content, &content); err != nil {
			return nil, fmt.Errorf("decode writing content: %w", err)
		}
		return content, nil
	case ContentTypeQuiz:
		var content QuizContent
		if err := json.Unmarshal(s.Content, &content); err != nil {
			return nil, fmt.Errorf("decode quiz content: %w", err)
		}
		return content, nil
	default:
		return nil, fmt.Errorf("unknown content type %q", s.ContentType)
	}
}

// IsTerminal reports whether the submission reached a terminal status.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusCompleted || s.Status == SubmissionStatusFailed
}
