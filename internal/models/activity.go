package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Activity is a learning task a student can attempt. Quiz activities carry
// their ordered question list as a JSON document.
type Activity struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Type        string         `gorm:"size:32;not null" json:"type"`
	Questions   datatypes.JSON `json:"questions"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Question types supported by quiz activities.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"
)

// QuizQuestion is one entry in a quiz activity's question list.
type QuizQuestion struct {
	Index         int      `json:"index"`
	Type          string   `json:"type"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        float64  `json:"points"`
}

// PointsOrDefault returns the declared point weight, defaulting to 1.
func (q QuizQuestion) PointsOrDefault() float64 {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// QuizQuestions decodes the activity's question list.
func (a Activity) QuizQuestions() ([]QuizQuestion, error) {
	if len(a.Questions) == 0 {
		return nil, nil
	}

	var questions []QuizQuestion
	if err := json.Unmarshal(a.Questions, &questions); err != nil {
		return nil, fmt.Errorf("decode quiz questions: %w", err)
	}
	return questions, nil
}
