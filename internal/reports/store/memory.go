package store

import (
	"context"
	"sort"
	"sync"

	"casetrack/internal/reports/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
)

type InMemory struct {
	mu      sync.RWMutex
	reports map[id.ReportID]models.Report
}

func NewInMemory() *InMemory {
	return &InMemory{reports: make(map[id.ReportID]models.Report)}
}

func (s *InMemory) Create(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.reports[r.ID] = *r
	return nil
}

// ListRecent returns up to limit reports, newest first.
func (s *InMemory) ListRecent(_ context.Context, limit int) ([]models.Report, error) {
	s.mu.RLock()
	out := make([]models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
