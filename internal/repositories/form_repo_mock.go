package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gerador/internal/models"
)

// MockFormRepository is an in-memory implementation of FormRepository.
type MockFormRepository struct {
	forms        map[uint]models.Form
	responses    map[uint]models.FormResponse
	nextFormID   uint
	nextAnswerID uint
	mu           sync.RWMutex
}

// NewMockFormRepository creates a new instance of MockFormRepository.
func NewMockFormRepository() *MockFormRepository {
	return &MockFormRepository{
		forms:     make(map[uint]models.Form),
		responses: make(map[uint]models.FormResponse),
	}
}

// Create adds a new form.
func (r *MockFormRepository) Create(form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextFormID++
	now := time.Now().UTC()
	form.ID = r.nextFormID
	form.IsPublic = form.Settings.IsPublic
	form.CreatedAt = now
	form.UpdatedAt = now
	r.forms[form.ID] = *form
	return nil
}

// GetForm returns a form by its ID.
func (r *MockFormRepository) GetForm(id uint) (*models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	form, ok := r.forms[id]
	if !ok {
		return nil, fmt.Errorf("form with ID %d: %w", id, ErrFormNotFound)
	}
	return &form, nil
}

// ListAccessible returns userID's forms and every public form.
func (r *MockFormRepository) ListAccessible(userID *uint, skip, limit int) ([]models.Form, error) {
	return r.list(skip, limit, func(f models.Form) bool {
		return f.Settings.IsPublic || (userID != nil && f.OwnerID == *userID)
	}), nil
}

// ListByOwner returns the forms created by ownerID.
func (r *MockFormRepository) ListByOwner(ownerID uint, skip, limit int) ([]models.Form, error) {
	return r.list(skip, limit, func(f models.Form) bool { return f.OwnerID == ownerID }), nil
}

func (r *MockFormRepository) list(skip, limit int, keep func(models.Form) bool) []models.Form {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formList := make([]models.Form, 0, len(r.forms))
	for _, f := range r.forms {
		if keep(f) {
			formList = append(formList, f)
		}
	}
	sort.Slice(formList, func(i, j int) bool { return formList[i].ID < formList[j].ID })
	return window(formList, skip, limit)
}

// Update replaces an existing form.
func (r *MockFormRepository) Update(form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.forms[form.ID]
	if !ok {
		return fmt.Errorf("form with ID %d not found for update: %w", form.ID, ErrFormNotFound)
	}
	form.CreatedAt = existing.CreatedAt
	form.OwnerID = existing.OwnerID
	form.IsPublic = form.Settings.IsPublic
	form.UpdatedAt = time.Now().UTC()
	r.forms[form.ID] = *form
	return nil
}

// Delete removes a form and all of its responses.
func (r *MockFormRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.forms[id]; !ok {
		return fmt.Errorf("form with ID %d not found for deletion: %w", id, ErrFormNotFound)
	}
	for rid, resp := range r.responses {
		if resp.FormID == id {
			delete(r.responses, rid)
		}
	}
	delete(r.forms, id)
	return nil
}

// FindResponse returns userID's response to formID, or nil.
func (r *MockFormRepository) FindResponse(formID, userID uint) (*models.FormResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, resp := range r.responses {
		if resp.FormID == formID && resp.RespondentID != nil && *resp.RespondentID == userID {
			return &resp, nil
		}
	}
	return nil, nil
}

// SaveResponse stores a new response, enforcing uniqueness of
// (form, single respondent) under the write lock.
func (r *MockFormRepository) SaveResponse(response *models.FormResponse) (*models.FormResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if key := response.SingleRespondentID; key != nil {
		for _, resp := range r.responses {
			if resp.FormID == response.FormID && resp.SingleRespondentID != nil && *resp.SingleRespondentID == *key {
				return nil, ErrResponseExists
			}
		}
	}

	r.nextAnswerID++
	now := time.Now().UTC()
	response.ID = r.nextAnswerID
	response.CreatedAt = now
	response.UpdatedAt = now
	r.responses[response.ID] = *response

	saved := *response
	return &saved, nil
}

// ListResponses returns the responses to formID in submission order.
func (r *MockFormRepository) ListResponses(formID uint, skip, limit int) ([]models.FormResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	responseList := make([]models.FormResponse, 0)
	for _, resp := range r.responses {
		if resp.FormID == formID {
			responseList = append(responseList, resp)
		}
	}
	sort.Slice(responseList, func(i, j int) bool { return responseList[i].ID < responseList[j].ID })
	return window(responseList, skip, limit), nil
}
