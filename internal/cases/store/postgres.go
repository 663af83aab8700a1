package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"casetrack/internal/cases/models"
	"casetrack/internal/platform/postgres"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/platform/tx"
)

const caseColumns = `id, ob_number, title, description, status, court_date, id_number, created_at`

// PostgresCaseStore persists cases in PostgreSQL. It joins the caller's
// transaction when one is carried in the context.
type PostgresCaseStore struct {
	db *sql.DB
}

func NewPostgresCaseStore(db *sql.DB) *PostgresCaseStore {
	return &PostgresCaseStore{db: db}
}

func (s *PostgresCaseStore) Create(ctx context.Context, c *models.Case) error {
	_, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO cases (`+caseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(c.ID), c.OBNumber, c.Title, c.Description, string(c.Status),
		nullTime(c.CourtDate), nullString(c.IDNumber), c.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

func (s *PostgresCaseStore) Update(ctx context.Context, c *models.Case) error {
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE cases SET title = $2, description = $3, status = $4, court_date = $5
		WHERE id = $1`,
		uuid.UUID(c.ID), c.Title, c.Description, string(c.Status), nullTime(c.CourtDate),
	)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresCaseStore) FindByID(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	row := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, uuid.UUID(caseID))
	c, err := ScanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find case by id: %w", err)
	}
	return c, nil
}

func (s *PostgresCaseStore) FindByOBNumber(ctx context.Context, obNumber string) (*models.Case, error) {
	row := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE ob_number = $1`, obNumber)
	c, err := ScanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find case by ob number: %w", err)
	}
	return c, nil
}

func (s *PostgresCaseStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Case, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		where = append(where, fmt.Sprintf("(ob_number ILIKE $%d OR title ILIKE $%d)", len(args), len(args)))
	}
	query := `SELECT ` + caseColumns + ` FROM cases`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, ob_number DESC`

	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()
	var out []*models.Case
	for rows.Next() {
		c, err := ScanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanCase reads one row selected with the standard case column list.
// The dashboard store reuses it.
func ScanCase(row RowScanner) (*models.Case, error) {
	var (
		caseID    uuid.UUID
		status    string
		courtDate sql.NullTime
		idNumber  sql.NullString
		c         models.Case
	)
	if err := row.Scan(&caseID, &c.OBNumber, &c.Title, &c.Description, &status, &courtDate, &idNumber, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CaseID(caseID)
	c.Status = id.CaseStatus(status)
	if courtDate.Valid {
		t := courtDate.Time.UTC()
		c.CourtDate = &t
	}
	c.IDNumber = idNumber.String
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// CaseColumns is the select list ScanCase expects.
func CaseColumns(alias string) string {
	if alias == "" {
		return caseColumns
	}
	cols := strings.Split(caseColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

// PostgresNoteStore persists officer notes.
type PostgresNoteStore struct {
	db *sql.DB
}

func NewPostgresNoteStore(db *sql.DB) *PostgresNoteStore {
	return &PostgresNoteStore{db: db}
}

// Add inserts n. A missing case surfaces as sentinel.ErrNotFound.
func (s *PostgresNoteStore) Add(ctx context.Context, n *models.Note) error {
	_, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx,
		`INSERT INTO officer_notes (id, case_id, note, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.UUID(n.ID), uuid.UUID(n.CaseID), n.Note, n.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *PostgresNoteStore) ListByCase(ctx context.Context, caseID id.CaseID) ([]models.Note, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, case_id, note, created_at FROM officer_notes
		WHERE case_id = $1 ORDER BY created_at DESC`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return scanNotes(rows)
}

func (s *PostgresNoteStore) ListRecent(ctx context.Context, caseIDs []id.CaseID, limit int) ([]models.Note, error) {
	if len(caseIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	ids := make([]string, len(caseIDs))
	for i, cid := range caseIDs {
		ids[i] = cid.String()
	}
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, `
		SELECT id, case_id, note, created_at FROM officer_notes
		WHERE case_id = ANY($1::uuid[])
		ORDER BY created_at DESC
		LIMIT $2`, pq.Array(ids), limit)
	if err != nil {
		return nil, fmt.Errorf("list recent notes: %w", err)
	}
	return scanNotes(rows)
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	defer rows.Close()
	var out []models.Note
	for rows.Next() {
		var (
			noteID, caseID uuid.UUID
			n              models.Note
		)
		if err := rows.Scan(&noteID, &caseID, &n.Note, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.ID = id.NoteID(noteID)
		n.CaseID = id.CaseID(caseID)
		n.CreatedAt = n.CreatedAt.UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
