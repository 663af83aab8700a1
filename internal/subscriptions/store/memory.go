package store

import (
	"context"
	"sort"
	"sync"

	"casetrack/internal/subscriptions/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
)

type pairKey struct {
	caseID id.CaseID
	email  string
}

// InMemory keeps subscriptions in process. Get-or-create is a
// check-then-insert under the write lock.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.SubscriptionID]*models.Subscription
	byPair map[pairKey]id.SubscriptionID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.SubscriptionID]*models.Subscription),
		byPair: make(map[pairKey]id.SubscriptionID),
	}
}

// GetOrCreate stores sub unless (case, email) already exists, in which case
// the existing row is returned with created=false.
func (s *InMemory) GetOrCreate(_ context.Context, sub *models.Subscription) (*models.Subscription, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{caseID: sub.CaseID, email: sub.Email}
	if existingID, ok := s.byPair[key]; ok {
		cp := *s.byID[existingID]
		return &cp, false, nil
	}
	cp := *sub
	s.byID[sub.ID] = &cp
	s.byPair[key] = sub.ID
	out := cp
	return &out, true, nil
}

// DeleteOwned removes the subscription only when it belongs to email.
// A missing or foreign subscription both return sentinel.ErrNotFound.
func (s *InMemory) DeleteOwned(_ context.Context, subID id.SubscriptionID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.byID[subID]
	if !ok || !sub.OwnedBy(email) {
		return sentinel.ErrNotFound
	}
	delete(s.byID, subID)
	delete(s.byPair, pairKey{caseID: sub.CaseID, email: sub.Email})
	return nil
}

// ListByEmail returns the address's subscriptions, newest first.
func (s *InMemory) ListByEmail(_ context.Context, email string) ([]models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Subscription
	for _, sub := range s.byID {
		if sub.Email == email {
			out = append(out, *sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListEmailsByCase returns every subscribed address for the case.
func (s *InMemory) ListEmailsByCase(_ context.Context, caseID id.CaseID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for key := range s.byPair {
		if key.caseID == caseID {
			out = append(out, key.email)
		}
	}
	sort.Strings(out)
	return out, nil
}

// CaseIDsForEmail returns the distinct cases the address follows.
func (s *InMemory) CaseIDsForEmail(_ context.Context, email string) ([]id.CaseID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.CaseID
	for key := range s.byPair {
		if key.email == email {
			out = append(out, key.caseID)
		}
	}
	return out, nil
}
