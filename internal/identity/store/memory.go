package store

import (
	"context"
	"sync"

	"casetrack/internal/identity/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
)

type InMemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		byID:    make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[userID]
	return &cp, nil
}

type InMemoryIdentityStore struct {
	mu         sync.RWMutex
	byUser     map[id.UserID]models.CitizenIdentity
	byIDNumber map[string]id.UserID
}

func NewInMemoryIdentityStore() *InMemoryIdentityStore {
	return &InMemoryIdentityStore{
		byUser:     make(map[id.UserID]models.CitizenIdentity),
		byIDNumber: make(map[string]id.UserID),
	}
}

// Create links an identity. A user holds at most one and an id number
// belongs to at most one user.
func (s *InMemoryIdentityStore) Create(_ context.Context, ci *models.CitizenIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[ci.UserID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.byIDNumber[ci.IDNumber]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.byUser[ci.UserID] = *ci
	s.byIDNumber[ci.IDNumber] = ci.UserID
	return nil
}

func (s *InMemoryIdentityStore) IDNumberTaken(_ context.Context, idNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byIDNumber[idNumber]
	return ok, nil
}

// IDNumberForUser returns sentinel.ErrNotFound when no identity is linked.
func (s *InMemoryIdentityStore) IDNumberForUser(_ context.Context, userID id.UserID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ci, ok := s.byUser[userID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return ci.IDNumber, nil
}
