package app

import (
	"context"
	"time"

	"casetrack/internal/cases/models"
	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
	"casetrack/pkg/requestcontext"
)

type CaseSeeder interface {
	Lookup(ctx context.Context, obNumber, requesterEmail string) (*models.Case, error)
	CreateCase(ctx context.Context, obNumber, idNumber string, fields models.Fields) (*models.Case, error)
	AddNote(ctx context.Context, caseID id.CaseID, text string) (*models.Note, error)
}

type seedCase struct {
	obNumber    string
	title       string
	description string
	status      id.CaseStatus
	age         time.Duration
	courtOffset *time.Duration
	notes       []string
}

func offset(d time.Duration) *time.Duration { return &d }

const day = 24 * time.Hour

var sampleCases = []seedCase{
	{
		obNumber:    "OB/2025/001",
		title:       "Theft at Central Market",
		description: "Reported theft of a mobile phone at the main entrance.",
		status:      id.CaseStatusInvestigation,
		age:         5 * day,
		notes:       []string{"Suspect identified via CCTV footage."},
	},
	{
		obNumber:    "OB/2025/002",
		title:       "Assault Case - Westlands",
		description: "Physical altercation between two individuals.",
		status:      id.CaseStatusCourt,
		age:         10 * day,
		courtOffset: offset(10 * day),
		notes:       []string{"Witness statements recorded.", "Medical report received."},
	},
	{
		obNumber:    "OB/2025/003",
		title:       "Traffic Incident",
		description: "Minor collision involving two vehicles.",
		status:      id.CaseStatusJudgement,
		age:         20 * day,
		courtOffset: offset(-2 * day),
		notes:       []string{"Both parties agreed to settle out of court."},
	},
}

// SeedResult counts what Seed wrote.
type SeedResult struct {
	CasesCreated int
	CasesSkipped int
	NotesAdded   int
}

// Seed loads the sample cases and their notes relative to now. Cases whose
// OB number already exists are left untouched, notes included.
func Seed(ctx context.Context, cases CaseSeeder, now time.Time) (SeedResult, error) {
	var res SeedResult
	for _, sc := range sampleCases {
		if _, err := cases.Lookup(ctx, sc.obNumber, ""); err == nil {
			res.CasesSkipped++
			continue
		} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return res, err
		}

		fields := models.Fields{Title: sc.title, Description: sc.description, Status: sc.status}
		if sc.courtOffset != nil {
			court := now.Add(*sc.courtOffset)
			fields.CourtDate = &court
		}
		created, err := cases.CreateCase(requestcontext.WithTime(ctx, now.Add(-sc.age)), sc.obNumber, "", fields)
		if err != nil {
			return res, err
		}
		res.CasesCreated++

		for _, text := range sc.notes {
			if _, err := cases.AddNote(requestcontext.WithTime(ctx, now), created.ID, text); err != nil {
				return res, err
			}
			res.NotesAdded++
		}
	}
	return res, nil
}
