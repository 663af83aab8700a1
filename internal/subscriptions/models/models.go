package models

import (
	"time"

	casesModels "casetrack/internal/cases/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/email"
	dErrors "casetrack/pkg/domain-errors"
)

// Subscription links an email address to a case for status updates.
//
// Invariants:
//   - at most one subscription per (CaseID, Email)
//   - Email is stored normalized
type Subscription struct {
	ID        id.SubscriptionID `json:"id"`
	CaseID    id.CaseID         `json:"case_id"`
	Email     string            `json:"email"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewSubscription normalizes and validates the address.
func NewSubscription(subID id.SubscriptionID, caseID id.CaseID, addr string, now time.Time) (*Subscription, error) {
	addr = email.Normalize(addr)
	if !email.Valid(addr) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a valid email is required")
	}
	return &Subscription{ID: subID, CaseID: caseID, Email: addr, CreatedAt: now}, nil
}

// OwnedBy reports whether addr owns the subscription.
func (s *Subscription) OwnedBy(addr string) bool {
	return s.Email == email.Normalize(addr)
}

// SubscriptionWithCase pairs a subscription with the case it follows.
type SubscriptionWithCase struct {
	Subscription
	Case casesModels.Case `json:"case"`
}
