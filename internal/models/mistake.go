package models

import "time"

// Mistake is one detected, typed error instance tied to an evaluation.
// SpanStart/SpanEnd, when set, index into the evaluated text ([start, end)).
// Possible marks detections the heuristics are not certain about.
type Mistake struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EvaluationID  uint      `gorm:"not null;index" json:"evaluation_id"`
	Category      string    `gorm:"size:32;not null" json:"category"`
	Severity      string    `gorm:"size:16;not null" json:"severity"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	Suggestion    string    `gorm:"type:text" json:"suggestion"`
	SpanStart     *int      `json:"span_start"`
	SpanEnd       *int      `json:"span_end"`
	OriginalText  string    `gorm:"type:text" json:"original_text"`
	CorrectedText string    `gorm:"type:text" json:"corrected_text"`
	Possible      bool      `gorm:"not null;default:false" json:"possible"`
	CreatedAt     time.Time `json:"created_at"`
}
