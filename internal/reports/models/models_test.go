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

func TestNewReport(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	r, err := NewReport(id.NewReportID(), "  suspicious vehicle near the market  ", now)
	require.NoError(t, err)
	assert.Equal(t, "suspicious vehicle near the market", r.Details)
	assert.Equal(t, now, r.CreatedAt)

	_, err = NewReport(id.NewReportID(), "   ", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewReport(id.NewReportID(), strings.Repeat("x", MaxDetailsLength+1), now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestFileReportRequestValidate(t *testing.T) {
	req := FileReportRequest{Details: "  "}
	req.Normalize()
	err := req.Validate()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	req = FileReportRequest{Details: "a tip"}
	assert.NoError(t, req.Validate())
}
