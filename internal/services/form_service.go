package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"gerador/internal/metrics"
	"gerador/internal/models"
	"gerador/internal/repositories"
	"gerador/pkg/rabbitmq"
)

// Processing log actions written by FormService.
const (
	ActionFormCreate     = "form.create"
	ActionFormUpdate     = "form.update"
	ActionFormDelete     = "form.delete"
	ActionResponseSubmit = "response.submit"
)

// EventPublisher delivers domain events to other services.
type EventPublisher interface {
	Publish(event rabbitmq.Event) error
}

// SubmissionRequest carries one submission and what is known about its caller.
type SubmissionRequest struct {
	FormID       uint
	Answers      models.Answers
	CallerUserID *uint
	CallerEmail  *string
	Metadata     map[string]any
	IPAddress    string
	UserAgent    string
	Fingerprint  string
}

// FormService handles business logic related to forms and their responses.
type FormService struct {
	forms  repositories.FormRepository
	policy *SubmissionPolicy
	logs   *ProcessingLogService
	events EventPublisher // nil disables event publishing
}

// NewFormService creates a new FormService.
func NewFormService(forms repositories.FormRepository, policy *SubmissionPolicy, logs *ProcessingLogService, events EventPublisher) *FormService {
	return &FormService{
		forms:  forms,
		policy: policy,
		logs:   logs,
		events: events,
	}
}

func (s *FormService) getForm(id uint) (*models.Form, error) {
	form, err := s.forms.GetForm(id)
	if err != nil {
		if errors.Is(err, repositories.ErrFormNotFound) {
			return nil, fmt.Errorf("form %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return form, nil
}

func (s *FormService) getOwnedForm(id, callerID uint) (*models.Form, error) {
	form, err := s.getForm(id)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != callerID {
		return nil, ErrNotAuthorized
	}
	return form, nil
}

// CreateForm validates the field definitions and stores a new form owned by ownerID.
func (s *FormService) CreateForm(ownerID uint, input models.FormCreate) (*models.Form, error) {
	if err := ValidateFormDefinition(input.Fields); err != nil {
		return nil, err
	}

	settings := models.DefaultFormSettings()
	if input.Settings != nil {
		settings = *input.Settings
	}
	form := &models.Form{
		Title:       input.Title,
		Description: input.Description,
		Fields:      input.Fields,
		Settings:    settings,
		OwnerID:     ownerID,
		IsActive:    true,
	}

	err := s.forms.Create(form)
	metrics.ObserveFormChange("create", err)
	s.logs.Record(ownerID, ActionFormCreate, fmt.Sprintf("Form '%s' created", form.Title), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	s.publish(rabbitmq.NewEvent(rabbitmq.EventFormCreated, form.ID, ownerID))
	return form, nil
}

// GetForm returns a form the caller is allowed to see.
func (s *FormService) GetForm(id uint, callerID *uint) (*models.Form, error) {
	form, err := s.getForm(id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(form, callerID) {
		return nil, ErrNotAuthorized
	}
	return form, nil
}

// ListForms returns the caller's forms and every public form; anonymous
// callers only see public forms.
func (s *FormService) ListForms(callerID *uint, skip, limit int) ([]models.Form, error) {
	return s.forms.ListAccessible(callerID, skip, limit)
}

// ListUserForms returns the forms owned by ownerID.
func (s *FormService) ListUserForms(ownerID uint, skip, limit int) ([]models.Form, error) {
	return s.forms.ListByOwner(ownerID, skip, limit)
}

// UpdateForm applies the non-nil members of input. Only the owner may update.
func (s *FormService) UpdateForm(id uint, input models.FormUpdate, callerID uint) (*models.Form, error) {
	form, err := s.getOwnedForm(id, callerID)
	if err != nil {
		return nil, err
	}

	if input.Fields != nil {
		if err := ValidateFormDefinition(*input.Fields); err != nil {
			return nil, err
		}
		form.Fields = *input.Fields
	}
	if input.Title != nil {
		form.Title = *input.Title
	}
	if input.Description != nil {
		form.Description = *input.Description
	}
	if input.Settings != nil {
		form.Settings = *input.Settings
	}
	if input.IsActive != nil {
		form.IsActive = *input.IsActive
	}
	if input.PublishedAt != nil {
		form.PublishedAt = input.PublishedAt
	}
	if input.ExpiresAt != nil {
		form.ExpiresAt = input.ExpiresAt
	}
	form.UpdatedAt = time.Now().UTC()

	err = s.forms.Update(form)
	metrics.ObserveFormChange("update", err)
	s.logs.Record(callerID, ActionFormUpdate, fmt.Sprintf("Form %d updated", id), err)
	if err != nil {
		return nil, fmt.Errorf("failed to update form %d: %w", id, err)
	}

	s.publish(rabbitmq.NewEvent(rabbitmq.EventFormUpdated, form.ID, form.OwnerID))
	return form, nil
}

// DeleteForm removes a form and all of its responses. Only the owner may delete.
func (s *FormService) DeleteForm(id, callerID uint) error {
	form, err := s.getOwnedForm(id, callerID)
	if err != nil {
		return err
	}

	err = s.forms.Delete(id)
	metrics.ObserveFormChange("delete", err)
	s.logs.Record(callerID, ActionFormDelete, fmt.Sprintf("Form '%s' deleted", form.Title), err)
	if err != nil {
		return fmt.Errorf("failed to delete form %d: %w", id, err)
	}

	s.publish(rabbitmq.NewEvent(rabbitmq.EventFormDeleted, id, form.OwnerID))
	return nil
}

// SubmitResponse runs the submission policy, validates the answers and
// stores the response. Nothing is stored when any step fails.
func (s *FormService) SubmitResponse(req SubmissionRequest) (*models.FormResponse, error) {
	response, err := s.submit(req)
	metrics.ObserveSubmission(submissionOutcome(err))
	if err != nil {
		customLog.WithFields(logrus.Fields{
			"form_id": req.FormID,
			"outcome": submissionOutcome(err),
		}).Debugf("Submission rejected: %v", err)
	}
	return response, err
}

func (s *FormService) submit(req SubmissionRequest) (*models.FormResponse, error) {
	form, err := s.getForm(req.FormID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckEligible(form, req.CallerUserID); err != nil {
		return nil, err
	}
	if err := ValidateAnswers(form, req.Answers); err != nil {
		return nil, err
	}

	response := &models.FormResponse{
		FormID:             form.ID,
		RespondentID:       req.CallerUserID,
		RespondentEmail:    req.CallerEmail,
		Answers:            req.Answers,
		Metadata:           req.Metadata,
		IPAddress:          req.IPAddress,
		UserAgent:          req.UserAgent,
		BrowserFingerprint: req.Fingerprint,
	}
	if form.Settings.OneResponsePerUser {
		response.SingleRespondentID = req.CallerUserID
	}

	saved, err := s.forms.SaveResponse(response)
	if err != nil {
		if errors.Is(err, repositories.ErrResponseExists) {
			return nil, ErrDuplicateResponse
		}
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	// Anonymous submissions are audited under the form owner.
	auditUser := form.OwnerID
	if req.CallerUserID != nil {
		auditUser = *req.CallerUserID
	}
	s.logs.Record(auditUser, ActionResponseSubmit, fmt.Sprintf("Response %d submitted to form %d", saved.ID, form.ID), nil)

	event := rabbitmq.NewEvent(rabbitmq.EventResponseSubmitted, form.ID, form.OwnerID)
	event.ResponseID = saved.ID
	event.NotificationEmail = form.Settings.NotificationEmail
	s.publish(event)

	return saved, nil
}

// GetFormResponses lists the responses of a form. Only the owner may read them.
func (s *FormService) GetFormResponses(formID, callerID uint, skip, limit int) ([]models.FormResponse, error) {
	if _, err := s.getOwnedForm(formID, callerID); err != nil {
		return nil, err
	}
	return s.forms.ListResponses(formID, skip, limit)
}

func (s *FormService) publish(event rabbitmq.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		customLog.Warnf("Failed to publish %s event for form %d: %v", event.Type, event.FormID, err)
	}
}

var outcomes = []struct {
	kind  error
	label string
}{
	{ErrNotFound, "not_found"},
	{ErrFormInactive, "form_inactive"},
	{ErrFormExpired, "form_expired"},
	{ErrDuplicateResponse, "duplicate"},
	{ErrNotAuthorized, "not_authorized"},
	{ErrMissingRequiredField, "missing_field"},
	{ErrUnknownField, "unknown_field"},
	{ErrTypeMismatch, "type_mismatch"},
	{ErrInvalidOption, "invalid_option"},
	{ErrRuleViolation, "rule_violation"},
}

// submissionOutcome labels err for the submissions counter.
func submissionOutcome(err error) string {
	if err == nil {
		return "accepted"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.kind) {
			return o.label
		}
	}
	return "error"
}
