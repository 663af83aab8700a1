package models

import (
	"time"
)

// NotificationKind names what changed on a followed case.
type NotificationKind string

const (
	NotificationStatusChanged    NotificationKind = "status_changed"
	NotificationCourtDateChanged NotificationKind = "court_date_changed"
	NotificationNoteAdded        NotificationKind = "note_added"
)

// Notification is the message published for one subscriber of a case.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Email       string           `json:"email"`
	CaseID      string           `json:"case_id"`
	OBNumber    string           `json:"ob_number"`
	Title       string           `json:"title"`
	Status      string           `json:"status"`
	StatusLabel string           `json:"status_label"`
	CourtDate   *time.Time       `json:"court_date,omitempty"`
	Message     string           `json:"message"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
