package repositories

import "gerador/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	GetAll(skip, limit int) ([]models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
}
