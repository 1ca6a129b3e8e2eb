package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"gerador/internal/models"
)

// GORMProcessingLogRepository is a GORM implementation of ProcessingLogRepository.
type GORMProcessingLogRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMProcessingLogRepository creates a new instance of GORMProcessingLogRepository.
func NewGORMProcessingLogRepository(db *gorm.DB, timeout time.Duration) *GORMProcessingLogRepository {
	return &GORMProcessingLogRepository{db: db, timeout: timeout}
}

// Create inserts a log entry.
func (r *GORMProcessingLogRepository) Create(log *models.ProcessingLog) error {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	if err := db.Create(log).Error; err != nil {
		return fmt.Errorf("failed to create processing log: %w", err)
	}
	return nil
}

// ListByUser retrieves every log entry of userID, oldest first.
func (r *GORMProcessingLogRepository) ListByUser(userID uint) ([]models.ProcessingLog, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var logs []models.ProcessingLog
	if err := db.Where("user_id = ?", userID).Order("id").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get logs of user %d: %w", userID, err)
	}
	return logs, nil
}

// ListAll retrieves a page of log entries, oldest first.
func (r *GORMProcessingLogRepository) ListAll(skip, limit int) ([]models.ProcessingLog, error) {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	var logs []models.ProcessingLog
	if err := page(db.Order("id"), skip, limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	return logs, nil
}

// DeleteByUser removes every log entry of userID.
func (r *GORMProcessingLogRepository) DeleteByUser(userID uint) error {
	db, cancel := scoped(r.db, r.timeout)
	defer cancel()

	if err := db.Where("user_id = ?", userID).Delete(&models.ProcessingLog{}).Error; err != nil {
		return fmt.Errorf("failed to delete logs of user %d: %w", userID, err)
	}
	return nil
}
