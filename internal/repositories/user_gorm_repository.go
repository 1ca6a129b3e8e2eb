package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gerador/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB, timeout time.Duration) *GORMUserRepository {
	return &GORMUserRepository{
		db:      db,
		timeout: timeout,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("email %s: %w", user.Email, ErrEmailExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id uint) (*models.User, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d: %w", id, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetAll retrieves a page of users ordered by ID.
func (r *GORMUserRepository) GetAll(skip, limit int) ([]models.User, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var users []models.User
	if err := page(db.Order("id"), skip, limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// Update writes the mutable columns of user.
func (r *GORMUserRepository) Update(user *models.User) error {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	res := db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Select("Email", "FullName", "HashedPassword", "IsActive", "IsAdmin", "BlockedReason", "LastLogin", "UpdatedAt").
		Updates(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("email %s: %w", user.Email, ErrEmailExists)
		}
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d not found for update: %w", user.ID, ErrUserNotFound)
	}
	return nil
}

// Delete deletes a user by its ID from the database.
func (r *GORMUserRepository) Delete(id uint) error {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	res := db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %d not found for deletion: %w", id, ErrUserNotFound)
	}
	return nil
}
