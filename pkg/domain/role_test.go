package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleCitizen, r)

	r, err = ParseRole("officer")
	require.NoError(t, err)
	assert.Equal(t, RoleOfficer, r)

	_, err = ParseRole("admin")
	require.Error(t, err)
}
