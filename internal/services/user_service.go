package services

import (
	"errors"
	"fmt"

	"gerador/internal/models"
	"gerador/internal/repositories"
)

// UserService backs the administrative user views.
type UserService struct {
	users repositories.UserRepository
	forms repositories.FormRepository
	logs  repositories.ProcessingLogRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, forms repositories.FormRepository, logs repositories.ProcessingLogRepository) *UserService {
	return &UserService{users: users, forms: forms, logs: logs}
}

func userErr(id uint, err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if errors.Is(err, repositories.ErrEmailExists) {
		return fmt.Errorf("user %d: %w", id, ErrEmailTaken)
	}
	return err
}

// ListUsers returns a page of users.
func (s *UserService) ListUsers(skip, limit int) ([]models.User, error) {
	return s.users.GetAll(skip, limit)
}

// GetUser returns a single user.
func (s *UserService) GetUser(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, userErr(id, err)
	}
	return user, nil
}

// CreateUser creates an account on behalf of an administrator.
func (s *UserService) CreateUser(input models.UserCreate) (*models.User, error) {
	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:          normalizeEmail(input.Email),
		FullName:       input.FullName,
		HashedPassword: hashed,
		IsActive:       true,
		IsAdmin:        input.IsAdmin,
	}
	if err := s.users.Create(user); err != nil {
		return nil, userErr(0, err)
	}
	return user, nil
}

// UpdateUser applies the non-nil members of input.
func (s *UserService) UpdateUser(id uint, input models.UserUpdate) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, userErr(id, err)
	}

	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
		if user.IsActive {
			user.BlockedReason = nil
		}
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}

	if err := s.users.Update(user); err != nil {
		return nil, userErr(id, err)
	}
	return user, nil
}

// BlockUser deactivates the account and records why.
func (s *UserService) BlockUser(id uint, reason string) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, userErr(id, err)
	}
	user.IsActive = false
	user.BlockedReason = &reason
	if err := s.users.Update(user); err != nil {
		return nil, userErr(id, err)
	}
	return user, nil
}

// DeleteUser removes the user's forms (with their responses), the user's
// processing logs and finally the user.
func (s *UserService) DeleteUser(id uint) error {
	if _, err := s.users.GetByID(id); err != nil {
		return userErr(id, err)
	}

	forms, err := s.forms.ListByOwner(id, 0, 0)
	if err != nil {
		return err
	}
	for _, f := range forms {
		if err := s.forms.Delete(f.ID); err != nil {
			return fmt.Errorf("failed to delete form %d of user %d: %w", f.ID, id, err)
		}
	}
	if err := s.logs.DeleteByUser(id); err != nil {
		return err
	}
	if err := s.users.Delete(id); err != nil {
		return userErr(id, err)
	}
	return nil
}
