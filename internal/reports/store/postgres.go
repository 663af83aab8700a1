package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"casetrack/internal/platform/postgres"
	"casetrack/internal/reports/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Report) error {
	_, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx,
		`INSERT INTO anonymous_reports (id, details, created_at) VALUES ($1, $2, $3)`,
		uuid.UUID(r.ID), r.Details, r.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]models.Report, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx,
		`SELECT id, details, created_at FROM anonymous_reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		var (
			reportID uuid.UUID
			r        models.Report
		)
		if err := rows.Scan(&reportID, &r.Details, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.ID = id.ReportID(reportID)
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
