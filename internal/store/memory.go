package store

import (
	"context"
	"sync"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// MemoryStore is a process-local ReportStore. It stores pointers as given;
// callers must not mutate a report after Put.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*models.DeviceReport
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*models.DeviceReport)}
}

func (s *MemoryStore) Get(_ context.Context, fileName string) (*models.DeviceReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[fileName]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Put(_ context.Context, report *models.DeviceReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.FileName] = report
	return nil
}

// Len returns the number of stored reports.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

func (s *MemoryStore) Close() error { return nil }
