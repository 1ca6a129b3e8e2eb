package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gerador/internal/models"
)

// GORMFormRepository is a GORM implementation of FormRepository.
type GORMFormRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMFormRepository creates a new instance of GORMFormRepository.
// Every call is bounded by timeout.
func NewGORMFormRepository(db *gorm.DB, timeout time.Duration) *GORMFormRepository {
	return &GORMFormRepository{
		db:      db,
		timeout: timeout,
	}
}

// Create creates a new form in the database.
func (r *GORMFormRepository) Create(form *models.Form) error {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	form.IsPublic = form.Settings.IsPublic
	if err := db.Create(form).Error; err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

// GetForm retrieves a single form by its ID from the database.
func (r *GORMFormRepository) GetForm(id uint) (*models.Form, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var form models.Form
	if err := db.First(&form, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form with ID %d: %w", id, ErrFormNotFound)
		}
		return nil, fmt.Errorf("failed to get form by ID %d: %w", id, err)
	}
	return &form, nil
}

// ListAccessible retrieves the caller's forms and every public form.
func (r *GORMFormRepository) ListAccessible(userID *uint, skip, limit int) ([]models.Form, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	q := db.Model(&models.Form{})
	if userID != nil {
		q = q.Where("owner_id = ? OR is_public = ?", *userID, true)
	} else {
		q = q.Where("is_public = ?", true)
	}

	var forms []models.Form
	if err := page(q.Order("id"), skip, limit).Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

// ListByOwner retrieves the forms created by ownerID.
func (r *GORMFormRepository) ListByOwner(ownerID uint, skip, limit int) ([]models.Form, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var forms []models.Form
	q := db.Where("owner_id = ?", ownerID).Order("id")
	if err := page(q, skip, limit).Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms of user %d: %w", ownerID, err)
	}
	return forms, nil
}

// Update writes every mutable column of form.
func (r *GORMFormRepository) Update(form *models.Form) error {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	form.IsPublic = form.Settings.IsPublic
	res := db.Model(&models.Form{}).
		Where("id = ?", form.ID).
		Select("Title", "Description", "Fields", "Settings", "IsPublic", "IsActive", "PublishedAt", "ExpiresAt", "UpdatedAt").
		Updates(form)
	if res.Error != nil {
		return fmt.Errorf("failed to update form: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("form with ID %d not found for update: %w", form.ID, ErrFormNotFound)
	}
	return nil
}

// Delete removes the form's responses and then the form in one transaction.
func (r *GORMFormRepository) Delete(id uint) error {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", id).Delete(&models.FormResponse{}).Error; err != nil {
			return fmt.Errorf("failed to delete responses of form %d: %w", id, err)
		}
		res := tx.Delete(&models.Form{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete form: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("form with ID %d not found for deletion: %w", id, ErrFormNotFound)
		}
		return nil
	})
}

// FindResponse returns userID's response to formID, or nil when there is none.
func (r *GORMFormRepository) FindResponse(formID, userID uint) (*models.FormResponse, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var response models.FormResponse
	err := db.Where("form_id = ? AND respondent_id = ?", formID, userID).First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up response of user %d to form %d: %w", userID, formID, err)
	}
	return &response, nil
}

// SaveResponse inserts a new response. The (form_id, single_respondent_id)
// unique index turns a concurrent duplicate into ErrResponseExists.
func (r *GORMFormRepository) SaveResponse(response *models.FormResponse) (*models.FormResponse, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	if err := db.Create(response).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrResponseExists
		}
		return nil, fmt.Errorf("failed to save response: %w", err)
	}
	return response, nil
}

// ListResponses retrieves the responses to formID in submission order.
func (r *GORMFormRepository) ListResponses(formID uint, skip, limit int) ([]models.FormResponse, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var responses []models.FormResponse
	q := db.Where("form_id = ?", formID).Order("id")
	if err := page(q, skip, limit).Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to list responses of form %d: %w", formID, err)
	}
	return responses, nil
}
