package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "cases_ob_number_key"}

	assert.True(t, IsUniqueViolation(dup, ""))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", dup), "cases_ob_number_key"))
	assert.False(t, IsUniqueViolation(dup, "users_email_key"))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("plain"), ""))
}

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	require.Error(t, err)
}

func TestSchemaDeclaresSubscriptionUniqueness(t *testing.T) {
	assert.Contains(t, schema, "UNIQUE (case_id, email)")
	assert.Contains(t, schema, "ON DELETE CASCADE")
}
