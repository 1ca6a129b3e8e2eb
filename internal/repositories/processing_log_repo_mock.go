package repositories

import (
	"sort"
	"sync"
	"time"

	"gerador/internal/models"
)

// MockProcessingLogRepository is an in-memory implementation of ProcessingLogRepository.
type MockProcessingLogRepository struct {
	logs   map[uint]models.ProcessingLog
	nextID uint
	mu     sync.RWMutex
}

// NewMockProcessingLogRepository creates a new instance of MockProcessingLogRepository.
func NewMockProcessingLogRepository() *MockProcessingLogRepository {
	return &MockProcessingLogRepository{
		logs: make(map[uint]models.ProcessingLog),
	}
}

// Create adds a new log entry.
func (r *MockProcessingLogRepository) Create(log *models.ProcessingLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	log.ID = r.nextID
	log.CreatedAt = time.Now().UTC()
	r.logs[log.ID] = *log
	return nil
}

// ListByUser returns every log entry of userID, oldest first.
func (r *MockProcessingLogRepository) ListByUser(userID uint) ([]models.ProcessingLog, error) {
	return r.list(0, 0, func(l models.ProcessingLog) bool { return l.UserID == userID }), nil
}

// ListAll returns a page of log entries, oldest first.
func (r *MockProcessingLogRepository) ListAll(skip, limit int) ([]models.ProcessingLog, error) {
	return r.list(skip, limit, func(models.ProcessingLog) bool { return true }), nil
}

func (r *MockProcessingLogRepository) list(skip, limit int, keep func(models.ProcessingLog) bool) []models.ProcessingLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logList := make([]models.ProcessingLog, 0, len(r.logs))
	for _, l := range r.logs {
		if keep(l) {
			logList = append(logList, l)
		}
	}
	sort.Slice(logList, func(i, j int) bool { return logList[i].ID < logList[j].ID })
	return window(logList, skip, limit)
}

// DeleteByUser removes every log entry of userID.
func (r *MockProcessingLogRepository) DeleteByUser(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, l := range r.logs {
		if l.UserID == userID {
			delete(r.logs, id)
		}
	}
	return nil
}
