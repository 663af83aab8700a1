package models

import (
	"strings"
	"time"

	"casetrack/pkg/email"
	"casetrack/pkg/platform/validation"
)

// SignUpRequest is the body of POST /signup/.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	IDNumber string `json:"id_number" validate:"omitempty,max=20"`
}

func (r *SignUpRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
	r.IDNumber = strings.TrimSpace(r.IDNumber)
}

func (r *SignUpRequest) Validate() error {
	return validation.Struct(r)
}

// LoginRequest is the body of POST /login/.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
}

func (r *LoginRequest) Validate() error {
	return validation.Struct(r)
}

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IDNumber string `json:"id_number,omitempty"`
}

// TokenResponse is returned by signup and login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// Session is a freshly issued token for a user.
type Session struct {
	User        *User
	IDNumber    string
	AccessToken string
	ExpiresAt   time.Time
}

func ToTokenResponse(s *Session) TokenResponse {
	return TokenResponse{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   s.ExpiresAt,
		User: UserResponse{
			ID:       s.User.ID.String(),
			Email:    s.User.Email,
			Role:     s.User.Role.String(),
			IDNumber: s.IDNumber,
		},
	}
}
