package repositories

import "gerador/internal/models"

// ProcessingLogRepository defines the interface for audit log data access.
type ProcessingLogRepository interface {
	Create(log *models.ProcessingLog) error
	ListByUser(userID uint) ([]models.ProcessingLog, error)
	ListAll(skip, limit int) ([]models.ProcessingLog, error)
	DeleteByUser(userID uint) error
}
