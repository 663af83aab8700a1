package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
)

var now = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func TestNewCase(t *testing.T) {
	t.Run("defaults status to investigation", func(t *testing.T) {
		c, err := NewCase(id.NewCaseID(), " OB/2025/001 ", "", Fields{Title: "Stolen bicycle"}, now)
		require.NoError(t, err)
		assert.Equal(t, "OB/2025/001", c.OBNumber)
		assert.Equal(t, id.CaseStatusInvestigation, c.Status)
		assert.Equal(t, "Investigation", c.StatusLabel())
		assert.Equal(t, now, c.CreatedAt)
		assert.Nil(t, c.CourtDate)
	})

	tests := []struct {
		name string
		ob   string
		f    Fields
	}{
		{"empty ob number", "  ", Fields{Title: "t"}},
		{"ob number too long", strings.Repeat("x", 51), Fields{Title: "t"}},
		{"empty title", "OB/1", Fields{Title: " "}},
		{"title too long", "OB/1", Fields{Title: strings.Repeat("x", 201)}},
		{"unknown status", "OB/1", Fields{Title: "t", Status: "closed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCase(id.NewCaseID(), tt.ob, "", tt.f, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestApplyKeepsImmutableFields(t *testing.T) {
	c, err := NewCase(id.NewCaseID(), "OB/2025/001", "12345678", Fields{Title: "Burglary"}, now)
	require.NoError(t, err)

	court := time.Date(2025, 2, 1, 0, 0, 0, 0, time.FixedZone("EAT", 3*3600))
	require.NoError(t, c.Apply(Fields{Title: "Burglary at shop", Status: id.CaseStatusCourt, CourtDate: &court}))

	assert.Equal(t, "OB/2025/001", c.OBNumber)
	assert.Equal(t, "12345678", c.IDNumber)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, id.CaseStatusCourt, c.Status)
	require.NotNil(t, c.CourtDate)
	assert.True(t, c.CourtDate.Equal(court))
	assert.Equal(t, time.UTC, c.CourtDate.Location())
}

func TestChanged(t *testing.T) {
	d1 := now.Add(24 * time.Hour)
	d2 := now.Add(48 * time.Hour)
	base := &Case{Status: id.CaseStatusInvestigation}

	s, cd := base.Changed(&Case{Status: id.CaseStatusInvestigation})
	assert.False(t, s)
	assert.False(t, cd)

	s, cd = base.Changed(&Case{Status: id.CaseStatusCourt, CourtDate: &d1})
	assert.True(t, s)
	assert.True(t, cd)

	withDate := &Case{Status: id.CaseStatusCourt, CourtDate: &d1}
	_, cd = withDate.Changed(&Case{Status: id.CaseStatusCourt, CourtDate: &d2})
	assert.True(t, cd)
}

func TestNewNote(t *testing.T) {
	_, err := NewNote(id.NewNoteID(), id.NewCaseID(), "   ", now)
	require.Error(t, err)

	n, err := NewNote(id.NewNoteID(), id.NewCaseID(), " Suspect identified ", now)
	require.NoError(t, err)
	assert.Equal(t, "Suspect identified", n.Note)
}

func TestListFilterMatches(t *testing.T) {
	c := &Case{OBNumber: "OB/2025/002", Title: "Assault at market", Status: id.CaseStatusDCI}

	assert.True(t, ListFilter{}.Matches(c))
	assert.True(t, ListFilter{Status: id.CaseStatusDCI}.Matches(c))
	assert.False(t, ListFilter{Status: id.CaseStatusCourt}.Matches(c))
	assert.True(t, ListFilter{Query: "market"}.Matches(c))
	assert.True(t, ListFilter{Query: "ob/2025"}.Matches(c))
	assert.False(t, ListFilter{Query: "fraud"}.Matches(c))
}

func TestCreateCaseRequestValidate(t *testing.T) {
	req := CreateCaseRequest{OBNumber: " OB/9 ", Title: "x", Status: " COURT "}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, id.CaseStatusCourt, req.Fields().Status)

	bad := CreateCaseRequest{Title: "x"}
	err := bad.Validate()
	require.Error(t, err)
	assert.Equal(t, "ob_number is required", dErrors.MessageOf(err))
}

func TestApplyRequiresStatus(t *testing.T) {
	court := now.Add(72 * time.Hour)
	c, err := NewCase(id.NewCaseID(), "OB/2025/001", "", Fields{Title: "Burglary", Status: id.CaseStatusCourt, CourtDate: &court}, now)
	require.NoError(t, err)

	err = c.Apply(Fields{Title: "Retitled"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Equal(t, "Burglary", c.Title)
	assert.Equal(t, id.CaseStatusCourt, c.Status)
	require.NotNil(t, c.CourtDate)
	assert.True(t, c.CourtDate.Equal(court))
}

func TestNewCaseDefaultsStatus(t *testing.T) {
	c, err := NewCase(id.NewCaseID(), "OB/2025/002", "", Fields{Title: "Assault"}, now)
	require.NoError(t, err)
	assert.Equal(t, id.CaseStatusInvestigation, c.Status)
}

func TestUpdateCaseRequestRequiresStatus(t *testing.T) {
	req := UpdateCaseRequest{Title: "Retitled"}
	req.Normalize()
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, "status is required", dErrors.MessageOf(err))

	req.Status = " Judgement "
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, id.CaseStatusJudgement, req.Fields().Status)
}
