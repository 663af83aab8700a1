package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"casetrack/internal/identity/models"
	"casetrack/internal/platform/postgres"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
	"casetrack/pkg/platform/tx"
)

const userColumns = `id, email, password_hash, role, created_at`

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) error {
	_, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(u.ID), u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, "users_email_key") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		userID uuid.UUID
		role   string
		u      models.User
	)
	if err := row.Scan(&userID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(userID)
	u.Role = id.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

type PostgresIdentityStore struct {
	db *sql.DB
}

func NewPostgresIdentityStore(db *sql.DB) *PostgresIdentityStore {
	return &PostgresIdentityStore{db: db}
}

func (s *PostgresIdentityStore) Create(ctx context.Context, ci *models.CitizenIdentity) error {
	_, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx,
		`INSERT INTO citizen_identities (user_id, id_number) VALUES ($1, $2)`,
		uuid.UUID(ci.UserID), ci.IDNumber)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert citizen identity: %w", err)
	}
	return nil
}

func (s *PostgresIdentityStore) IDNumberTaken(ctx context.Context, idNumber string) (bool, error) {
	var taken bool
	err := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM citizen_identities WHERE id_number = $1)`, idNumber).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check citizen identity: %w", err)
	}
	return taken, nil
}

func (s *PostgresIdentityStore) IDNumberForUser(ctx context.Context, userID id.UserID) (string, error) {
	var idNumber string
	err := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT id_number FROM citizen_identities WHERE user_id = $1`, uuid.UUID(userID)).Scan(&idNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("select citizen identity: %w", err)
	}
	return idNumber, nil
}
