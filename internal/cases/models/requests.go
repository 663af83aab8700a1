package models

import (
	"strings"
	"time"

	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/validation"
)

// CreateCaseRequest is the body of POST /cases/add/.
type CreateCaseRequest struct {
	OBNumber    string     `json:"ob_number" validate:"required,max=50"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=investigation dci court judgement"`
	CourtDate   *time.Time `json:"court_date"`
	IDNumber    string     `json:"id_number" validate:"omitempty,max=20"`
}

func (r *CreateCaseRequest) Normalize() {
	r.OBNumber = strings.TrimSpace(r.OBNumber)
	r.Title = strings.TrimSpace(r.Title)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	r.IDNumber = strings.TrimSpace(r.IDNumber)
}

func (r *CreateCaseRequest) Validate() error {
	return validation.Struct(r)
}

func (r *CreateCaseRequest) Fields() Fields {
	return Fields{
		Title:       r.Title,
		Description: r.Description,
		Status:      id.CaseStatus(r.Status),
		CourtDate:   r.CourtDate,
	}
}

// UpdateCaseRequest is the body of POST /cases/{id}/edit/. It replaces the
// whole editable record, so status is required and an omitted court_date
// clears it. OB number and identity number cannot be edited.
type UpdateCaseRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"required,oneof=investigation dci court judgement"`
	CourtDate   *time.Time `json:"court_date"`
}

func (r *UpdateCaseRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *UpdateCaseRequest) Validate() error {
	return validation.Struct(r)
}

func (r *UpdateCaseRequest) Fields() Fields {
	return Fields{
		Title:       r.Title,
		Description: r.Description,
		Status:      id.CaseStatus(r.Status),
		CourtDate:   r.CourtDate,
	}
}

// AddNoteRequest is the body of POST /cases/{id}/add-note/.
type AddNoteRequest struct {
	Note string `json:"note" validate:"required"`
}

func (r *AddNoteRequest) Normalize() {
	r.Note = strings.TrimSpace(r.Note)
}

func (r *AddNoteRequest) Validate() error {
	return validation.Struct(r)
}

// CaseResponse is the JSON view of a case.
type CaseResponse struct {
	ID          string     `json:"id"`
	OBNumber    string     `json:"ob_number"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StatusLabel string     `json:"status_label"`
	CourtDate   *time.Time `json:"court_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NoteResponse is the JSON view of a note.
type NoteResponse struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseDetailResponse is the JSON view of GET /case/{id}/.
type CaseDetailResponse struct {
	CaseResponse
	Notes []NoteResponse `json:"notes"`
}

func ToCaseResponse(c *Case) CaseResponse {
	return CaseResponse{
		ID:          c.ID.String(),
		OBNumber:    c.OBNumber,
		Title:       c.Title,
		Description: c.Description,
		Status:      string(c.Status),
		StatusLabel: c.StatusLabel(),
		CourtDate:   c.CourtDate,
		CreatedAt:   c.CreatedAt,
	}
}

func ToNoteResponse(n *Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID.String(),
		CaseID:    n.CaseID.String(),
		Note:      n.Note,
		CreatedAt: n.CreatedAt,
	}
}

func ToCaseDetailResponse(d *CaseDetail) CaseDetailResponse {
	notes := make([]NoteResponse, 0, len(d.Notes))
	for i := range d.Notes {
		notes = append(notes, ToNoteResponse(&d.Notes[i]))
	}
	return CaseDetailResponse{CaseResponse: ToCaseResponse(&d.Case), Notes: notes}
}
