package repositories

import "errors"

// Errors returned by every repository implementation.
var (
	ErrFormNotFound   = errors.New("form not found")
	ErrResponseExists = errors.New("a response from this respondent already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already registered")
)
