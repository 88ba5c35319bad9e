package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluation is the scored result of running the pipeline over a submission.
// The unique index on SubmissionID enforces the at-most-one invariant.
type Evaluation struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	SubmissionID       uint              `gorm:"not null;uniqueIndex" json:"submission_id"`
	OverallScore       int               `gorm:"not null" json:"overall_score"`
	GrammarScore       *int              `json:"grammar_score"`
	VocabularyScore    *int              `json:"vocabulary_score"`
	PronunciationScore *int              `json:"pronunciation_score"`
	LogicScore         *int              `json:"logic_score"`
	AIConfidence       float64           `gorm:"not null" json:"ai_confidence"`
	Breakdown          datatypes.JSONMap `json:"breakdown"`
	EvaluatedAt        time.Time         `json:"evaluated_at"`
	ReviewedByTeacher  bool              `gorm:"not null;default:false" json:"reviewed_by_teacher"`
	TeacherNotes       string            `gorm:"type:text" json:"teacher_notes"`
	TeacherScore       *float64          `json:"teacher_score"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Mistakes           []Mistake         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"mistakes,omitempty"`
	Feedback           *Feedback         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"feedback,omitempty"`
}
