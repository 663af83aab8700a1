package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	casesModels "casetrack/internal/cases/models"
	casesStore "casetrack/internal/cases/store"
	subModels "casetrack/internal/subscriptions/models"
	subStore "casetrack/internal/subscriptions/store"
	id "casetrack/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	cases *casesStore.InMemoryCaseStore
	subs  *subStore.InMemory
	store *InMemory
	base  time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.cases = casesStore.NewInMemoryCaseStore()
	s.subs = subStore.NewInMemory()
	s.store = NewInMemory(s.cases, s.subs)
	s.base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) addCase(ob, idNumber string, offset time.Duration) *casesModels.Case {
	c, err := casesModels.NewCase(id.NewCaseID(), ob, idNumber, casesModels.Fields{Title: ob}, s.base.Add(offset))
	s.Require().NoError(err)
	s.Require().NoError(s.cases.Create(s.ctx, c))
	return c
}

func (s *InMemoryStoreSuite) follow(c *casesModels.Case, addr string) {
	sub, err := subModels.NewSubscription(id.NewSubscriptionID(), c.ID, addr, s.base)
	s.Require().NoError(err)
	_, _, err = s.subs.GetOrCreate(s.ctx, sub)
	s.Require().NoError(err)
}

func (s *InMemoryStoreSuite) TestVisibleCasesIsDeduplicatedUnion() {
	subscribedOnly := s.addCase("OB/1", "", 0)
	both := s.addCase("OB/2", "12345678", time.Hour)
	identityOnly := s.addCase("OB/3", "12345678", 2*time.Hour)
	s.addCase("OB/4", "99999999", 3*time.Hour)

	s.follow(subscribedOnly, "a@example.com")
	s.follow(both, "a@example.com")
	s.follow(both, "b@example.com")

	got, err := s.store.VisibleCases(s.ctx, "a@example.com", "12345678")
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(identityOnly.ID, got[0].ID)
	s.Equal(both.ID, got[1].ID)
	s.Equal(subscribedOnly.ID, got[2].ID)
}

func (s *InMemoryStoreSuite) TestEmptyIdentityMatchesNoUnlinkedCases() {
	s.addCase("OB/1", "", 0)

	got, err := s.store.VisibleCases(s.ctx, "a@example.com", "")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *InMemoryStoreSuite) TestSubscribedCasesIgnoresIdentity() {
	followed := s.addCase("OB/1", "", 0)
	s.addCase("OB/2", "12345678", time.Hour)
	s.follow(followed, "a@example.com")

	got, err := s.store.SubscribedCases(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(followed.ID, got[0].ID)
}
