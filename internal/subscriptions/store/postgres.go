package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"casetrack/internal/subscriptions/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/platform/tx"
)

// PostgresStore persists subscriptions. The (case_id, email) unique
// constraint is the source of truth for deduplication.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetOrCreate inserts sub when absent. Concurrent callers racing on the same
// pair all observe the single surviving row.
func (s *PostgresStore) GetOrCreate(ctx context.Context, sub *models.Subscription) (*models.Subscription, bool, error) {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		INSERT INTO notification_subscriptions (id, case_id, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (case_id, email) DO NOTHING`,
		uuid.UUID(sub.ID), uuid.UUID(sub.CaseID), sub.Email, sub.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, false, sentinel.ErrNotFound
		}
		return nil, false, fmt.Errorf("insert subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert subscription rows affected: %w", err)
	}
	if n == 1 {
		cp := *sub
		return &cp, true, nil
	}

	var (
		subID, caseID uuid.UUID
		existing      models.Subscription
	)
	err = q.QueryRowContext(ctx, `
		SELECT id, case_id, email, created_at FROM notification_subscriptions
		WHERE case_id = $1 AND email = $2`,
		uuid.UUID(sub.CaseID), sub.Email,
	).Scan(&subID, &caseID, &existing.Email, &existing.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("load existing subscription: %w", err)
	}
	existing.ID = id.SubscriptionID(subID)
	existing.CaseID = id.CaseID(caseID)
	existing.CreatedAt = existing.CreatedAt.UTC()
	return &existing, false, nil
}

// DeleteOwned deletes in one statement so ownership is checked atomically.
func (s *PostgresStore) DeleteOwned(ctx context.Context, subID id.SubscriptionID, email string) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM notification_subscriptions WHERE id = $1 AND email = $2`,
		uuid.UUID(subID), email,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]models.Subscription, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, case_id, email, created_at FROM notification_subscriptions
		WHERE email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()
	var out []models.Subscription
	for rows.Next() {
		var (
			subID, caseID uuid.UUID
			sub           models.Subscription
		)
		if err := rows.Scan(&subID, &caseID, &sub.Email, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub.ID = id.SubscriptionID(subID)
		sub.CaseID = id.CaseID(caseID)
		sub.CreatedAt = sub.CreatedAt.UTC()
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListEmailsByCase(ctx context.Context, caseID id.CaseID) ([]string, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, `
		SELECT email FROM notification_subscriptions
		WHERE case_id = $1 ORDER BY email`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list subscriber emails: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan subscriber email: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
