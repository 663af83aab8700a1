//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"casetrack/internal/identity/models"
	"casetrack/internal/identity/store"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/platform/tx"
	"casetrack/pkg/testutil/containers"
)

type PostgresIdentityStoreSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	users      *store.PostgresUserStore
	identities *store.PostgresIdentityStore
	runner     *tx.Runner
}

func TestPostgresIdentityStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresIdentityStoreSuite))
}

func (s *PostgresIdentityStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.users = store.NewPostgresUserStore(s.postgres.DB)
	s.identities = store.NewPostgresIdentityStore(s.postgres.DB)
	s.runner = tx.NewRunner(s.postgres.DB, nil)
}

func (s *PostgresIdentityStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "citizen_identities", "users"))
}

func (s *PostgresIdentityStoreSuite) newUser(addr string) *models.User {
	u, err := models.NewUser(id.NewUserID(), addr, "$2a$10$hash", id.RoleCitizen, time.Now())
	s.Require().NoError(err)
	return u
}

// TestConcurrentDuplicateEmail verifies exactly one concurrent signup wins
// for a given email.
func (s *PostgresIdentityStoreSuite) TestConcurrentDuplicateEmail() {
	ctx := context.Background()
	const goroutines = 20
	var wg sync.WaitGroup
	var ok, dup atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := s.users.Create(ctx, s.newUser("race@example.com")); {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), ok.Load())
	s.Equal(int32(goroutines-1), dup.Load())
}

func (s *PostgresIdentityStoreSuite) TestIdentityRollsBackWithUser() {
	ctx := context.Background()
	first := s.newUser("first@example.com")
	s.Require().NoError(s.users.Create(ctx, first))
	s.Require().NoError(s.identities.Create(ctx, &models.CitizenIdentity{UserID: first.ID, IDNumber: "999"}))

	second := s.newUser("second@example.com")
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, second); err != nil {
			return err
		}
		return s.identities.Create(ctx, &models.CitizenIdentity{UserID: second.ID, IDNumber: "999"})
	})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	_, err = s.users.FindByEmail(ctx, "second@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)

	got, err := s.identities.IDNumberForUser(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("999", got)

	taken, err := s.identities.IDNumberTaken(ctx, "999")
	s.Require().NoError(err)
	s.True(taken)
	taken, err = s.identities.IDNumberTaken(ctx, "998")
	s.Require().NoError(err)
	s.False(taken)
}

func (s *PostgresIdentityStoreSuite) TestNotFound() {
	ctx := context.Background()
	_, err := s.users.FindByID(ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.identities.IDNumberForUser(ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
