package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetrack/internal/reports/models"
	id "casetrack/pkg/domain"
	"casetrack/pkg/platform/sentinel"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	var last *models.Report
	for i := 0; i < 3; i++ {
		r, err := models.NewReport(id.NewReportID(), "tip", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, s.Create(ctx, r))
		last = r
	}
	assert.ErrorIs(t, s.Create(ctx, last), sentinel.ErrAlreadyUsed)

	got, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, last.ID, got[0].ID)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
}
