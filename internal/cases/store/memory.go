package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"casetrack/internal/cases/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
)

// InMemoryCaseStore keeps cases in process, for tests and demo mode.
type InMemoryCaseStore struct {
	mu   sync.RWMutex
	byID map[id.CaseID]*models.Case
	byOB map[string]id.CaseID
}

func NewInMemoryCaseStore() *InMemoryCaseStore {
	return &InMemoryCaseStore{
		byID: make(map[id.CaseID]*models.Case),
		byOB: make(map[string]id.CaseID),
	}
}

// Create inserts c, returning sentinel.ErrAlreadyUsed when the OB number is taken.
func (s *InMemoryCaseStore) Create(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byOB[c.OBNumber]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *c
	s.byID[c.ID] = &cp
	s.byOB[c.OBNumber] = c.ID
	return nil
}

// Update persists the mutable fields of c.
func (s *InMemoryCaseStore) Update(_ context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.Title = c.Title
	existing.Description = c.Description
	existing.Status = c.Status
	existing.CourtDate = c.CourtDate
	return nil
}

func (s *InMemoryCaseStore) FindByID(_ context.Context, caseID id.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryCaseStore) FindByOBNumber(_ context.Context, obNumber string) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	caseID, ok := s.byOB[obNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[caseID]
	return &cp, nil
}

// List returns cases matching filter, newest first.
func (s *InMemoryCaseStore) List(_ context.Context, filter models.ListFilter) ([]*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Case, 0, len(s.byID))
	for _, c := range s.byID {
		if !filter.Matches(c) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return out, nil
}

// Snapshot returns copies of every case. The dashboard's in-memory store
// composes over it.
func (s *InMemoryCaseStore) Snapshot() []models.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Case, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, *c)
	}
	return out
}

func sortNewestFirst(cases []*models.Case) {
	sort.SliceStable(cases, func(i, j int) bool {
		if !cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].CreatedAt.After(cases[j].CreatedAt)
		}
		return strings.Compare(cases[i].OBNumber, cases[j].OBNumber) > 0
	})
}

// InMemoryNoteStore keeps officer notes in process.
type InMemoryNoteStore struct {
	mu    sync.RWMutex
	notes []models.Note
}

func NewInMemoryNoteStore() *InMemoryNoteStore {
	return &InMemoryNoteStore{}
}

func (s *InMemoryNoteStore) Add(_ context.Context, n *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, *n)
	return nil
}

// ListByCase returns the case's notes, newest first.
func (s *InMemoryNoteStore) ListByCase(_ context.Context, caseID id.CaseID) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Note
	for _, n := range s.notes {
		if n.CaseID == caseID {
			out = append(out, n)
		}
	}
	sortNotesNewestFirst(out)
	return out, nil
}

// ListRecent returns up to limit notes across the given cases, newest first.
func (s *InMemoryNoteStore) ListRecent(_ context.Context, caseIDs []id.CaseID, limit int) ([]models.Note, error) {
	if len(caseIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	wanted := make(map[id.CaseID]struct{}, len(caseIDs))
	for _, cid := range caseIDs {
		wanted[cid] = struct{}{}
	}
	s.mu.RLock()
	var out []models.Note
	for _, n := range s.notes {
		if _, ok := wanted[n.CaseID]; ok {
			out = append(out, n)
		}
	}
	s.mu.RUnlock()
	sortNotesNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNotesNewestFirst(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}
