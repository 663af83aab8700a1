package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/email"
)

const MaxIDNumberLength = 20

// User is an account that can hold a bearer token.
//
// Invariants:
//   - Email is normalized and unique across users
//   - PasswordHash is a bcrypt hash, never the password
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	Role         id.Role
	CreatedAt    time.Time
}

func NewUser(userID id.UserID, addr, passwordHash string, role id.Role, now time.Time) (*User, error) {
	addr = email.Normalize(addr)
	if !email.Valid(addr) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email must be a valid address")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	if role != id.RoleCitizen && role != id.RoleOfficer {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &User{ID: userID, Email: addr, PasswordHash: passwordHash, Role: role, CreatedAt: now}, nil
}

// CitizenIdentity links an account to a national id number. Cases carrying
// the same id number show on the account's dashboard.
type CitizenIdentity struct {
	UserID   id.UserID
	IDNumber string
}

func NewCitizenIdentity(userID id.UserID, idNumber string) (*CitizenIdentity, error) {
	idNumber = strings.TrimSpace(idNumber)
	if idNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "id number is required")
	}
	if utf8.RuneCountInString(idNumber) > MaxIDNumberLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "id number must be at most 20 characters")
	}
	return &CitizenIdentity{UserID: userID, IDNumber: idNumber}, nil
}
