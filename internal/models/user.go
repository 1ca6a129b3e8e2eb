package models

import "time"

// User represents an account of the form builder.
type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Email          string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	FullName       string     `json:"full_name" gorm:"type:varchar(255)"`
	HashedPassword string     `json:"-" gorm:"type:varchar(255);not null"` // No json for security
	IsActive       bool       `json:"is_active" gorm:"not null;default:true"`
	IsAdmin        bool       `json:"is_admin" gorm:"not null;default:false"`
	BlockedReason  *string    `json:"blocked_reason,omitempty" gorm:"type:varchar(255)"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLogin      *time.Time `json:"last_login"`
}

// UserCreate is the payload for self registration and admin user creation.
type UserCreate struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserUpdate is an admin partial update of a user.
type UserUpdate struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	IsActive *bool   `json:"is_active"`
	IsAdmin  *bool   `json:"is_admin"`
}
