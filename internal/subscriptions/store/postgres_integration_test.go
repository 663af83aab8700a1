//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	casesModels "casetrack/internal/cases/models"
	casesStore "casetrack/internal/cases/store"
	"casetrack/internal/subscriptions/models"
	"casetrack/internal/subscriptions/store"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	cases    *casesStore.PostgresCaseStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.cases = casesStore.NewPostgresCaseStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "notification_subscriptions", "cases"))
}

func (s *PostgresStoreSuite) createCase(ob string) *casesModels.Case {
	c, err := casesModels.NewCase(id.NewCaseID(), ob, "", casesModels.Fields{Title: ob}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.cases.Create(context.Background(), c))
	return c
}

// TestConcurrentGetOrCreate verifies racing subscribers end with one row.
func (s *PostgresStoreSuite) TestConcurrentGetOrCreate() {
	ctx := context.Background()
	c := s.createCase("OB/2025/001")

	const goroutines = 30
	ids := make(chan id.SubscriptionID, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := models.NewSubscription(id.NewSubscriptionID(), c.ID, "race@example.com", time.Now())
			s.NoError(err)
			got, _, err := s.store.GetOrCreate(ctx, sub)
			s.NoError(err)
			ids <- got.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[id.SubscriptionID]struct{}{}
	for sid := range ids {
		seen[sid] = struct{}{}
	}
	s.Len(seen, 1)
}

func (s *PostgresStoreSuite) TestMissingCaseAndOwnership() {
	ctx := context.Background()
	orphan, err := models.NewSubscription(id.NewSubscriptionID(), id.NewCaseID(), "a@example.com", time.Now())
	s.Require().NoError(err)
	_, _, err = s.store.GetOrCreate(ctx, orphan)
	s.ErrorIs(err, sentinel.ErrNotFound)

	c := s.createCase("OB/2025/002")
	sub, err := models.NewSubscription(id.NewSubscriptionID(), c.ID, "owner@example.com", time.Now())
	s.Require().NoError(err)
	_, created, err := s.store.GetOrCreate(ctx, sub)
	s.Require().NoError(err)
	s.True(created)

	s.ErrorIs(s.store.DeleteOwned(ctx, sub.ID, "other@example.com"), sentinel.ErrNotFound)
	emails, err := s.store.ListEmailsByCase(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal([]string{"owner@example.com"}, emails)

	s.Require().NoError(s.store.DeleteOwned(ctx, sub.ID, "owner@example.com"))
	subs, err := s.store.ListByEmail(ctx, "owner@example.com")
	s.Require().NoError(err)
	s.Empty(subs)
}
