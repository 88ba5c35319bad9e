package models

import "time"

// Notification types dispatched by the evaluation pipeline.
const (
	NotificationTypeEvaluationCompleted = "evaluation_completed"
	NotificationTypeFeedbackReady       = "feedback_ready"
)

// Notification is a message targeted at a specific student.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;index" json:"user_id"`
	Type      string    `gorm:"size:64" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
