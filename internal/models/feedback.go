package models

import (
	"time"

	"gorm.io/datatypes"
)

// Feedback tones.
const (
	ToneEncouraging  = "encouraging"
	ToneConstructive = "constructive"
	ToneNeutral      = "neutral"
)

// Feedback is the composed narrative and structured guidance for an
// evaluation. Summarized flips once; re-summarizing is a no-op.
type Feedback struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	EvaluationID    uint                        `gorm:"not null;uniqueIndex" json:"evaluation_id"`
	Narrative       string                      `gorm:"type:text;not null" json:"narrative"`
	Strengths       datatypes.JSONSlice[string] `json:"strengths"`
	Improvements    datatypes.JSONSlice[string] `json:"improvements"`
	Recommendations datatypes.JSONSlice[string] `json:"recommendations"`
	Tone            string                      `gorm:"size:32;not null" json:"tone"`
	Summarized      bool                        `gorm:"not null;default:false" json:"summarized"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}
