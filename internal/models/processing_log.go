package models

import "time"

// Processing log statuses.
const (
	LogStatusSuccess = "success"
	LogStatusFailed  = "failed"
)

// ProcessingLog is an audit entry of an action performed on behalf of a user.
type ProcessingLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	Action       string    `json:"action" gorm:"type:varchar(50);not null" validate:"required,max=50"`
	Details      string    `json:"details" gorm:"type:text"`
	Status       string    `json:"status" gorm:"type:varchar(20);not null" validate:"required,max=20"`
	ErrorMessage *string   `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}
