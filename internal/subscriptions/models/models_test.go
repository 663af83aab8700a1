package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "casetrack/pkg/domain"
	dErrors "casetrack/pkg/domain-errors"
)

func TestNewSubscription(t *testing.T) {
	now := time.Now()

	sub, err := NewSubscription(id.NewSubscriptionID(), id.NewCaseID(), "  Jane@Example.COM ", now)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", sub.Email)
	assert.True(t, sub.OwnedBy("JANE@example.com"))
	assert.False(t, sub.OwnedBy("john@example.com"))

	for _, bad := range []string{"", "not-an-email", "Jane <jane@example.com>"} {
		_, err := NewSubscription(id.NewSubscriptionID(), id.NewCaseID(), bad, now)
		require.Error(t, err, bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	}
}

func TestSubscribeRequestValidate(t *testing.T) {
	req := SubscribeRequest{OBNumber: " OB/2025/001 ", Email: " A@B.CO "}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "a@b.co", req.Email)

	req = SubscribeRequest{OBNumber: "OB/2025/001"}
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, "email is required", dErrors.MessageOf(err))
}
