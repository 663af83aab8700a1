package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/platform/validation"
)

const MaxDetailsLength = 5000

// Report is an anonymous tip. Nothing about the sender is stored.
type Report struct {
	ID        id.ReportID
	Details   string
	CreatedAt time.Time
}

func NewReport(reportID id.ReportID, details string, now time.Time) (*Report, error) {
	details = strings.TrimSpace(details)
	if details == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "details are required")
	}
	if utf8.RuneCountInString(details) > MaxDetailsLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "details must be at most 5000 characters")
	}
	return &Report{ID: reportID, Details: details, CreatedAt: now}, nil
}

// FileReportRequest is the body of POST /report/.
type FileReportRequest struct {
	Details string `json:"details" validate:"required,max=5000"`
}

func (r *FileReportRequest) Normalize() {
	r.Details = strings.TrimSpace(r.Details)
}

func (r *FileReportRequest) Validate() error {
	return validation.Struct(r)
}

type ReportResponse struct {
	ID        string    `json:"id"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FiledResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type ListResponse struct {
	Reports []ReportResponse `json:"reports"`
}

func ToListResponse(reports []Report) ListResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, ReportResponse{ID: r.ID.String(), Details: r.Details, CreatedAt: r.CreatedAt})
	}
	return ListResponse{Reports: out}
}
