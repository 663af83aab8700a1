package models

import (
	"strings"
	"time"

	casesModels "casetrack/internal/cases/models"
	"casetrack/pkg/email"
	"casetrack/pkg/platform/validation"
)

// SubscribeRequest is the body of POST /subscribe/.
type SubscribeRequest struct {
	OBNumber string `json:"ob_number" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,mailbox"`
}

func (r *SubscribeRequest) Normalize() {
	r.OBNumber = strings.TrimSpace(r.OBNumber)
	r.Email = email.Normalize(r.Email)
}

func (r *SubscribeRequest) Validate() error {
	return validation.Struct(r)
}

// UnsubscribeRequest is the body of POST /notifications/.
type UnsubscribeRequest struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
}

func (r *UnsubscribeRequest) Normalize() {
	r.SubscriptionID = strings.TrimSpace(r.SubscriptionID)
}

func (r *UnsubscribeRequest) Validate() error {
	return validation.Struct(r)
}

// SubscriptionResponse is the JSON view of a subscription.
type SubscriptionResponse struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	OBNumber  string    `json:"ob_number,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Created   bool      `json:"created"`
}

// NotificationsResponse is the JSON view of GET /notifications/.
type NotificationsResponse struct {
	Subscriptions []SubscriptionEntry `json:"subscriptions"`
}

// SubscriptionEntry is one row on the notifications page.
type SubscriptionEntry struct {
	ID        string                   `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	Case      casesModels.CaseResponse `json:"case"`
}

func ToNotificationsResponse(subs []SubscriptionWithCase) NotificationsResponse {
	out := make([]SubscriptionEntry, 0, len(subs))
	for i := range subs {
		out = append(out, SubscriptionEntry{
			ID:        subs[i].ID.String(),
			CreatedAt: subs[i].CreatedAt,
			Case:      casesModels.ToCaseResponse(&subs[i].Case),
		})
	}
	return NotificationsResponse{Subscriptions: out}
}
