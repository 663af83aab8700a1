package models

import (
	"time"

	casesModels "casetrack/internal/cases/models"
	id "casetrack/pkg/domain"
)

const (
	RecentNotesLimit   = 10
	UpcomingCourtLimit = 5
)

// Requester identifies whose dashboard is being built. IDNumber is empty
// when the account has no linked citizen identity.
type Requester struct {
	UserID   id.UserID
	Email    string
	IDNumber string
}

// Summary counts the visible cases per status.
type Summary struct {
	Total    int
	ByStatus map[id.CaseStatus]int
}

// NewSummary counts cases, reporting zero for every known status.
func NewSummary(cases []casesModels.Case) Summary {
	s := Summary{Total: len(cases), ByStatus: make(map[id.CaseStatus]int, len(id.CaseStatuses))}
	for _, st := range id.CaseStatuses {
		s.ByStatus[st] = 0
	}
	for i := range cases {
		s.ByStatus[cases[i].Status]++
	}
	return s
}

// Dashboard is the aggregate computed from one visible-case snapshot.
type Dashboard struct {
	Cases              []casesModels.Case
	Summary            Summary
	RecentNotes        []NoteWithCase
	UpcomingCourtDates []casesModels.Case
	GeneratedAt        time.Time
}

// NoteWithCase is a recent note labelled with its case's OB number.
type NoteWithCase struct {
	casesModels.Note
	OBNumber string
}
