package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"gerador/internal/logger"
	"gerador/internal/models"
	"gerador/internal/repositories"
)

var customLog = logger.NewLogger()

// ProcessingLogService records and lists the audit trail of user actions.
type ProcessingLogService struct {
	repo repositories.ProcessingLogRepository
}

// NewProcessingLogService creates a new ProcessingLogService.
func NewProcessingLogService(repo repositories.ProcessingLogRepository) *ProcessingLogService {
	return &ProcessingLogService{repo: repo}
}

// CreateLog validates and stores an entry.
func (s *ProcessingLogService) CreateLog(entry *models.ProcessingLog) error {
	if err := validate.Struct(entry); err != nil {
		return fmt.Errorf("invalid processing log: %w", err)
	}
	if err := s.repo.Create(entry); err != nil {
		return fmt.Errorf("failed to create processing log: %w", err)
	}
	return nil
}

// Record stores the outcome of action for userID. A failure to write the
// entry is logged and never returned, so auditing cannot fail the action.
func (s *ProcessingLogService) Record(userID uint, action, details string, actionErr error) {
	if s == nil {
		return
	}
	entry := &models.ProcessingLog{
		UserID:  userID,
		Action:  action,
		Details: details,
		Status:  models.LogStatusSuccess,
	}
	if actionErr != nil {
		msg := actionErr.Error()
		entry.Status = models.LogStatusFailed
		entry.ErrorMessage = &msg
	}
	if err := s.CreateLog(entry); err != nil {
		customLog.WithFields(logrus.Fields{
			"user_id": userID,
			"action":  action,
		}).Warnf("Failed to write processing log: %v", err)
	}
}

// GetUserLogs returns every entry of userID, oldest first.
func (s *ProcessingLogService) GetUserLogs(userID uint) ([]models.ProcessingLog, error) {
	return s.repo.ListByUser(userID)
}

// GetAllLogs returns a page of entries across all users.
func (s *ProcessingLogService) GetAllLogs(skip, limit int) ([]models.ProcessingLog, error) {
	return s.repo.ListAll(skip, limit)
}
