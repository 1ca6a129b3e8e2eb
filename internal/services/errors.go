package services

import (
	"errors"
	"fmt"

	"gerador/internal/models"
)

// Error kinds of the form pipeline. Callers match them with errors.Is.
var (
	ErrSchema               = errors.New("invalid form definition")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrUnknownField         = errors.New("unknown field")
	ErrRuleViolation        = errors.New("validation rule violated")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrInvalidOption        = errors.New("invalid option")
	ErrFormInactive         = errors.New("form is not active")
	ErrFormExpired          = errors.New("form has expired")
	ErrDuplicateResponse    = errors.New("user has already responded to this form")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrNotFound             = errors.New("not found")
)

// Account errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInactiveUser       = errors.New("inactive user")
	ErrEmailTaken         = errors.New("email already registered")
)

// ValidationError describes a failure tied to a single field, either of the
// form definition or of a submitted answer.
type ValidationError struct {
	Kind    error
	FieldID string
	Rule    models.RuleKind
	Message string
}

func (e *ValidationError) Error() string {
	if e.FieldID == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v: field %q: %s", e.Kind, e.FieldID, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func fieldError(kind error, fieldID, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, FieldID: fieldID, Message: fmt.Sprintf(format, args...)}
}

func ruleError(kind error, field models.FormField, rule models.ValidationRule, format string, args ...any) *ValidationError {
	msg := fmt.Sprintf(format, args...)
	if rule.Message != nil && *rule.Message != "" {
		msg = *rule.Message
	}
	return &ValidationError{Kind: kind, FieldID: field.ID, Rule: rule.Rule, Message: msg}
}
