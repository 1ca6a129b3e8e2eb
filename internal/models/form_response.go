package models

import "time"

// FormResponse is one respondent's accepted answers to a form. It is written
// once by the submission pipeline and never modified.
type FormResponse struct {
	ID           uint  `json:"id" gorm:"primaryKey"`
	FormID       uint  `json:"form_id" gorm:"not null;index;uniqueIndex:idx_form_single_respondent"`
	RespondentID *uint `json:"respondent_id" gorm:"index"`
	// SingleRespondentID repeats RespondentID only when the form accepts one
	// response per user; NULLs never collide in the unique index.
	SingleRespondentID *uint          `json:"-" gorm:"uniqueIndex:idx_form_single_respondent"`
	RespondentEmail    *string        `json:"respondent_email" gorm:"type:varchar(255)"`
	Answers            Answers        `json:"answers" gorm:"serializer:json;not null"`
	Metadata           map[string]any `json:"metadata" gorm:"serializer:json"`
	IPAddress          string         `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	UserAgent          string         `json:"user_agent,omitempty" gorm:"type:text"`
	BrowserFingerprint string         `json:"browser_fingerprint,omitempty" gorm:"type:varchar(255)"`
	CreatedAt          time.Time      `json:"submitted_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
