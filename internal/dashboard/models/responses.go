package models

import (
	"strings"
	"time"

	casesModels "casetrack/internal/cases/models"
	id "casetrack/pkg/domain"
)

// LookupRequest is the body of POST /dashboard/.
type LookupRequest struct {
	OBNumber string `json:"ob_number"`
}

func (r *LookupRequest) Normalize() {
	r.OBNumber = strings.TrimSpace(r.OBNumber)
}

type SummaryResponse struct {
	Total         int `json:"total"`
	Investigation int `json:"investigation"`
	DCI           int `json:"dci"`
	Court         int `json:"court"`
	Judgement     int `json:"judgement"`
}

type RecentNoteResponse struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	OBNumber  string    `json:"ob_number"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardResponse struct {
	Summary            SummaryResponse            `json:"summary"`
	Cases              []casesModels.CaseResponse `json:"cases"`
	RecentNotes        []RecentNoteResponse       `json:"recent_notes"`
	UpcomingCourtDates []casesModels.CaseResponse `json:"upcoming_court_dates"`
	GeneratedAt        time.Time                  `json:"generated_at"`
}

func ToDashboardResponse(d *Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Summary: SummaryResponse{
			Total:         d.Summary.Total,
			Investigation: d.Summary.ByStatus[id.CaseStatusInvestigation],
			DCI:           d.Summary.ByStatus[id.CaseStatusDCI],
			Court:         d.Summary.ByStatus[id.CaseStatusCourt],
			Judgement:     d.Summary.ByStatus[id.CaseStatusJudgement],
		},
		Cases:              toCaseResponses(d.Cases),
		RecentNotes:        make([]RecentNoteResponse, 0, len(d.RecentNotes)),
		UpcomingCourtDates: toCaseResponses(d.UpcomingCourtDates),
		GeneratedAt:        d.GeneratedAt,
	}
	for _, n := range d.RecentNotes {
		resp.RecentNotes = append(resp.RecentNotes, RecentNoteResponse{
			ID:        n.ID.String(),
			CaseID:    n.CaseID.String(),
			OBNumber:  n.OBNumber,
			Note:      n.Note.Note,
			CreatedAt: n.CreatedAt,
		})
	}
	return resp
}

func toCaseResponses(cases []casesModels.Case) []casesModels.CaseResponse {
	out := make([]casesModels.CaseResponse, 0, len(cases))
	for i := range cases {
		out = append(out, casesModels.ToCaseResponse(&cases[i]))
	}
	return out
}
