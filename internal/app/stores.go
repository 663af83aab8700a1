// Package app builds the stores and services shared by cmd/server and
// cmd/casectl.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	casesService "casetrack/internal/cases/service"
	casesStore "casetrack/internal/cases/store"
	dashboardService "casetrack/internal/dashboard/service"
	dashboardStore "casetrack/internal/dashboard/store"
	identityService "casetrack/internal/identity/service"
	identityStore "casetrack/internal/identity/store"
	"casetrack/internal/platform/postgres"
	reportsService "casetrack/internal/reports/service"
	reportsStore "casetrack/internal/reports/store"
	subsService "casetrack/internal/subscriptions/service"
	subsStore "casetrack/internal/subscriptions/store"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/tx"
)

type NoteStore interface {
	casesService.NoteStore
	dashboardService.NoteReader
}

type SubscriptionStore interface {
	subsService.Store
	ListEmailsByCase(ctx context.Context, caseID id.CaseID) ([]string, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores holds one backend's implementation of every store. DB is nil in
// memory mode.
type Stores struct {
	DB            *sql.DB
	Cases         casesService.CaseStore
	Notes         NoteStore
	Subscriptions SubscriptionStore
	Dashboard     dashboardService.Store
	Reports       reportsService.Store
	Users         identityService.UserStore
	Identities    identityService.IdentityStore
	Tx            TxRunner
	ReadTx        TxRunner
}

// OpenStores connects to PostgreSQL when databaseURL is set and applies the
// schema. Without a URL every store lives in process memory.
func OpenStores(ctx context.Context, databaseURL string, logger *slog.Logger) (*Stores, error) {
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		return NewMemoryStores(), nil
	}

	db, err := postgres.Open(ctx, postgres.Config{URL: databaseURL})
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Stores{
		DB:            db,
		Cases:         casesStore.NewPostgresCaseStore(db),
		Notes:         casesStore.NewPostgresNoteStore(db),
		Subscriptions: subsStore.NewPostgres(db),
		Dashboard:     dashboardStore.NewPostgres(db),
		Reports:       reportsStore.NewPostgres(db),
		Users:         identityStore.NewPostgresUserStore(db),
		Identities:    identityStore.NewPostgresIdentityStore(db),
		Tx:            tx.NewRunner(db, nil),
		ReadTx:        tx.NewRunner(db, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}),
	}, nil
}

func NewMemoryStores() *Stores {
	cases := casesStore.NewInMemoryCaseStore()
	subs := subsStore.NewInMemory()
	runner := tx.NewMemoryRunner()
	return &Stores{
		Cases:         cases,
		Notes:         casesStore.NewInMemoryNoteStore(),
		Subscriptions: subs,
		Dashboard:     dashboardStore.NewInMemory(cases, subs),
		Reports:       reportsStore.NewInMemory(),
		Users:         identityStore.NewInMemoryUserStore(),
		Identities:    identityStore.NewInMemoryIdentityStore(),
		Tx:            runner,
		ReadTx:        runner,
	}
}

// Ping checks the database. Memory mode is always healthy.
func (s *Stores) Ping(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.PingContext(ctx)
}

func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
