package services

import (
	"fmt"
	"time"

	"gerador/internal/models"
)

// ResponseFinder looks up a user's existing response to a form. It returns
// nil, nil when there is none.
type ResponseFinder interface {
	FindResponse(formID, userID uint) (*models.FormResponse, error)
}

// SubmissionPolicy decides whether a caller may submit to a form.
type SubmissionPolicy struct {
	responses ResponseFinder
	now       func() time.Time
}

// NewSubmissionPolicy creates a SubmissionPolicy using the wall clock.
func NewSubmissionPolicy(responses ResponseFinder) *SubmissionPolicy {
	return &SubmissionPolicy{responses: responses, now: time.Now}
}

// WithClock returns a copy of the policy that reads the time from now.
func (p *SubmissionPolicy) WithClock(now func() time.Time) *SubmissionPolicy {
	return &SubmissionPolicy{responses: p.responses, now: now}
}

// CheckEligible runs the submission checks in order: active, not expired,
// not a repeat of an identified caller, visible to the caller. Anonymous
// callers skip the repeat check even when one response per user is enforced.
func (p *SubmissionPolicy) CheckEligible(form *models.Form, callerID *uint) error {
	if !form.IsActive {
		return ErrFormInactive
	}
	if form.ExpiresAt != nil && form.ExpiresAt.Before(p.now()) {
		return ErrFormExpired
	}
	if form.Settings.OneResponsePerUser && callerID != nil {
		existing, err := p.responses.FindResponse(form.ID, *callerID)
		if err != nil {
			return fmt.Errorf("failed to check previous responses: %w", err)
		}
		if existing != nil {
			return ErrDuplicateResponse
		}
	}
	if !CanAccess(form, callerID) {
		return ErrNotAuthorized
	}
	return nil
}

// CanAccess reports whether callerID may read or submit to form.
func CanAccess(form *models.Form, callerID *uint) bool {
	return form.Settings.IsPublic || (callerID != nil && *callerID == form.OwnerID)
}
