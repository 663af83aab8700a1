package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
)

const (
	MaxOBNumberLength = 50
	MaxTitleLength    = 200
	MaxIDNumberLength = 20
)

// Case is a police case record addressed publicly by its OB number.
//
// Invariants:
//   - OBNumber is non-empty, at most 50 characters and unique across cases
//   - OBNumber and IDNumber never change after creation
//   - Title is non-empty and at most 200 characters
//   - CreatedAt is immutable after construction
type Case struct {
	ID          id.CaseID     `json:"id"`
	OBNumber    string        `json:"ob_number"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      id.CaseStatus `json:"status"`
	CourtDate   *time.Time    `json:"court_date"`
	IDNumber    string        `json:"id_number,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Fields holds the mutable part of a case.
type Fields struct {
	Title       string
	Description string
	Status      id.CaseStatus
	CourtDate   *time.Time
}

// NewCase builds a case after checking its invariants. An empty status
// defaults to investigation.
func NewCase(caseID id.CaseID, obNumber, idNumber string, f Fields, now time.Time) (*Case, error) {
	obNumber = strings.TrimSpace(obNumber)
	if obNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ob_number is required")
	}
	if utf8.RuneCountInString(obNumber) > MaxOBNumberLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "ob_number must be at most 50 characters")
	}
	idNumber = strings.TrimSpace(idNumber)
	if utf8.RuneCountInString(idNumber) > MaxIDNumberLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "id_number must be at most 20 characters")
	}
	if f.Status == "" {
		f.Status = id.CaseStatusInvestigation
	}
	c := &Case{
		ID:        caseID,
		OBNumber:  obNumber,
		IDNumber:  idNumber,
		CreatedAt: now,
	}
	if err := c.Apply(f); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply replaces every mutable field, so f must carry the full edit: an
// empty status is rejected and a nil court date clears it. OBNumber,
// IDNumber and CreatedAt are left untouched.
func (c *Case) Apply(f Fields) error {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "title must be at most 200 characters")
	}
	status := f.Status
	if status == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "status is required")
	}
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid case status: "+string(status))
	}
	c.Title = title
	c.Description = f.Description
	c.Status = status
	c.CourtDate = normalizeTime(f.CourtDate)
	return nil
}

// StatusLabel is the display name of the status.
func (c *Case) StatusLabel() string {
	return c.Status.Label()
}

// Changed reports which notifiable attributes differ between c and next.
func (c *Case) Changed(next *Case) (statusChanged, courtDateChanged bool) {
	statusChanged = c.Status != next.Status
	switch {
	case c.CourtDate == nil && next.CourtDate == nil:
	case c.CourtDate == nil || next.CourtDate == nil:
		courtDateChanged = true
	default:
		courtDateChanged = !c.CourtDate.Equal(*next.CourtDate)
	}
	return statusChanged, courtDateChanged
}

func normalizeTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}

// Note is an officer's free-text annotation on a case.
type Note struct {
	ID        id.NoteID `json:"id"`
	CaseID    id.CaseID `json:"case_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNote validates the note text.
func NewNote(noteID id.NoteID, caseID id.CaseID, text string, now time.Time) (*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "note is required")
	}
	return &Note{ID: noteID, CaseID: caseID, Note: text, CreatedAt: now}, nil
}

// CaseDetail is a case together with its notes, newest first.
type CaseDetail struct {
	Case
	Notes []Note `json:"notes"`
}

// ListFilter narrows the officer case list. Zero values match everything.
type ListFilter struct {
	Status id.CaseStatus
	Query  string
}

// Matches applies the filter to c. Query is a case-insensitive substring
// match over OB number and title.
func (f ListFilter) Matches(c *Case) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.OBNumber), q) ||
		strings.Contains(strings.ToLower(c.Title), q)
}
