package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumsValid(t *testing.T) {
	for _, s := range TaskStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TaskStatus("DONE").Valid())
	assert.True(t, RoleTeamLeader.Valid())
	assert.False(t, Role("GUEST").Valid())
	assert.True(t, SprintClosed.Valid())
	assert.False(t, SprintStatus("ARCHIVED").Valid())
	assert.True(t, MilestoneCurrent.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.True(t, ViewPersonal.Valid())
	assert.False(t, ViewMode("DEPARTMENT").Valid())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-30")
	require.NoError(t, err)
	assert.Equal(t, 30, d.Day())

	_, err = ParseDate("30/05/2024")
	assert.Error(t, err)
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(Invalid("title", "required"), ErrInvalid))
	assert.True(t, errors.Is(&PermissionError{Op: "sprint.close", Role: RoleEmployee}, ErrForbidden))
	assert.True(t, errors.Is(NotFound("task", "t1"), ErrNotFound))

	var ve *ValidationError
	require.True(t, errors.As(Invalid("reason", "must not be empty"), &ve))
	assert.Equal(t, "reason", ve.Field)
}
