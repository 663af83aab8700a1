package store

import (
	"context"
	"database/sql"
	"fmt"

	casesModels "casetrack/internal/cases/models"
	caseStore "casetrack/internal/cases/store"
	"casetrack/pkg/platform/tx"
)

// PostgresStore answers dashboard queries with one statement each so a
// caller's read transaction sees a single snapshot.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// VisibleCases selects the union of subscribed and identity-linked cases.
// Each row of cases is tested once, so the result has no duplicates.
func (s *PostgresStore) VisibleCases(ctx context.Context, email, idNumber string) ([]casesModels.Case, error) {
	query := `
		SELECT ` + caseStore.CaseColumns("c") + `
		FROM cases c
		WHERE EXISTS (
			SELECT 1 FROM notification_subscriptions ns
			WHERE ns.case_id = c.id AND ns.email = $1
		)
		OR ($2::text <> '' AND c.id_number = $2::text)
		ORDER BY c.created_at DESC, c.ob_number`
	return s.queryCases(ctx, "visible cases", query, email, idNumber)
}

// SubscribedCases selects only the cases email follows.
func (s *PostgresStore) SubscribedCases(ctx context.Context, email string) ([]casesModels.Case, error) {
	query := `
		SELECT ` + caseStore.CaseColumns("c") + `
		FROM cases c
		WHERE EXISTS (
			SELECT 1 FROM notification_subscriptions ns
			WHERE ns.case_id = c.id AND ns.email = $1
		)
		ORDER BY c.created_at DESC, c.ob_number`
	return s.queryCases(ctx, "subscribed cases", query, email)
}

func (s *PostgresStore) queryCases(ctx context.Context, what, query string, args ...any) ([]casesModels.Case, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	var out []casesModels.Case
	for rows.Next() {
		c, err := caseStore.ScanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}
