package repositories

import (
	"gerador/internal/models"
)

// FormRepository defines the interface for form and form response data access.
type FormRepository interface {
	Create(form *models.Form) error
	GetForm(id uint) (*models.Form, error)
	// ListAccessible returns the forms owned by userID plus every public form,
	// or only public forms when userID is nil.
	ListAccessible(userID *uint, skip, limit int) ([]models.Form, error)
	ListByOwner(ownerID uint, skip, limit int) ([]models.Form, error)
	Update(form *models.Form) error
	// Delete removes the form's responses and then the form, atomically.
	Delete(id uint) error

	// FindResponse returns nil, nil when userID has not answered formID.
	FindResponse(formID, userID uint) (*models.FormResponse, error)
	// SaveResponse must reject a second response carrying the same
	// (FormID, SingleRespondentID) pair with ErrResponseExists.
	SaveResponse(response *models.FormResponse) (*models.FormResponse, error)
	ListResponses(formID uint, skip, limit int) ([]models.FormResponse, error)
}
