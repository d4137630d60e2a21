package sprints

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engboard/internal/models"
)

var (
	admin    = models.Actor{ID: "u-admin", Role: models.RoleAdmin}
	manager  = models.Actor{ID: "u-mgr", Role: models.RoleDeptManager}
	leader   = models.Actor{ID: "u-lead", Role: models.RoleTeamLeader}
	employee = models.Actor{ID: "u-emp", Role: models.RoleEmployee}
	stamp    = time.Date(2024, 5, 27, 9, 30, 0, 0, time.UTC)
)

func newSprint(t *testing.T, end string) models.Sprint {
	t.Helper()
	s, err := New("spr-1", "Foundations", "p1", "2024-05-20", end)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := newSprint(t, "2024-06-01")
	assert.Equal(t, models.SprintPlanned, s.Status)
	assert.Empty(t, s.Extensions)

	s = newSprint(t, "")
	assert.Equal(t, "2024-06-03", s.EndDate)

	_, err := New("x", " ", "p1", "2024-05-20", "")
	assert.ErrorIs(t, err, models.ErrInvalid)
	_, err = New("x", "n", "", "2024-05-20", "")
	assert.ErrorIs(t, err, models.ErrInvalid)
	_, err = New("x", "n", "p1", "2024-05-20", "2024-05-01")
	assert.ErrorIs(t, err, models.ErrInvalid)
	_, err = New("x", "n", "p1", "soon", "")
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestLifecycle(t *testing.T) {
	s := newSprint(t, "2024-06-01")

	require.NoError(t, Activate(&s, leader.Role))
	assert.Equal(t, models.SprintActive, s.Status)

	assert.ErrorIs(t, Activate(&s, leader.Role), models.ErrInvalidTransition)

	require.NoError(t, Close(&s, manager.Role))
	assert.Equal(t, models.SprintClosed, s.Status)
	assert.ErrorIs(t, Close(&s, manager.Role), models.ErrInvalidTransition)

	assert.ErrorIs(t, Reopen(&s, leader.Role), models.ErrForbidden)
	assert.Equal(t, models.SprintClosed, s.Status)

	require.NoError(t, Reopen(&s, admin.Role))
	assert.Equal(t, models.SprintActive, s.Status)
	assert.ErrorIs(t, Reopen(&s, admin.Role), models.ErrInvalidTransition)
}

func TestActivateClosedIsReopen(t *testing.T) {
	s := newSprint(t, "2024-06-01")
	s.Status = models.SprintClosed

	err := Activate(&s, leader.Role)
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.Equal(t, models.SprintClosed, s.Status)

	require.NoError(t, Activate(&s, admin.Role))
	assert.Equal(t, models.SprintActive, s.Status)
}

func TestEmployeeCannotChangeStatus(t *testing.T) {
	s := newSprint(t, "2024-06-01")
	assert.ErrorIs(t, Activate(&s, employee.Role), models.ErrForbidden)
	s.Status = models.SprintActive
	assert.ErrorIs(t, Close(&s, employee.Role), models.ErrForbidden)
	assert.Equal(t, models.SprintActive, s.Status)
	assert.ErrorIs(t, CanDelete(employee.Role), models.ErrForbidden)
	assert.NoError(t, CanDelete(leader.Role))
}

func TestNoEdgeBackToPlanned(t *testing.T) {
	for _, from := range []models.SprintStatus{models.SprintPlanned, models.SprintActive, models.SprintClosed} {
		assert.False(t, allowed(from, models.SprintPlanned), from)
	}
}

func TestRescheduleAppendsHistory(t *testing.T) {
	s := newSprint(t, "2024-06-01")
	require.NoError(t, Activate(&s, admin.Role))

	ends := []string{"2024-06-05", "2024-06-05", "2024-06-12"}
	for i, end := range ends {
		ext, err := Reschedule(&s, end, "client delay", manager, fmt.Sprintf("ext-%d", i), stamp)
		require.NoError(t, err)
		assert.Equal(t, manager.ID, ext.ExtendedBy)
	}

	assert.Len(t, s.Extensions, len(ends))
	assert.Equal(t, "2024-06-12", s.EndDate)
	assert.Equal(t, "2024-06-01", s.Extensions[0].OldEndDate)
	assert.Equal(t, "2024-06-05", s.Extensions[2].OldEndDate)
	assert.Equal(t, models.SprintActive, s.Status)
}

func TestRescheduleRejections(t *testing.T) {
	s := newSprint(t, "2024-06-01")

	_, err := Reschedule(&s, "2024-06-10", "late", leader, "e", stamp)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = Reschedule(&s, "2024-06-10", "   ", manager, "e", stamp)
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "reason", ve.Field)

	_, err = Reschedule(&s, "2024-05-30", "pull in", manager, "e", stamp)
	assert.ErrorIs(t, err, models.ErrInvalid)

	_, err = Reschedule(&s, "next week", "late", manager, "e", stamp)
	assert.ErrorIs(t, err, models.ErrInvalid)

	s.Status = models.SprintClosed
	_, err = Reschedule(&s, "2024-06-10", "late", admin, "e", stamp)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	assert.Empty(t, s.Extensions)
	assert.Equal(t, "2024-06-01", s.EndDate)
}

func TestReschedulePlannedSprint(t *testing.T) {
	s := newSprint(t, "2024-06-01")

	_, err := Reschedule(&s, "2024-06-10", "client delay", manager, "e1", stamp)
	require.NoError(t, err)
	assert.Equal(t, models.SprintPlanned, s.Status)
	assert.Equal(t, "2024-06-10", s.EndDate)
}

func TestRescheduleDoesNotAliasHistory(t *testing.T) {
	s := newSprint(t, "2024-06-01")
	s.Extensions = make([]models.Extension, 0, 4)
	copied := s

	_, err := Reschedule(&s, "2024-06-02", "a", admin, "e1", stamp)
	require.NoError(t, err)
	assert.Empty(t, copied.Extensions)
	assert.Empty(t, copied.Extensions[:1][0].ID)
	assert.Len(t, s.Extensions, 1)
}

func TestDaysRemaining(t *testing.T) {
	today := time.Date(2024, 5, 27, 18, 45, 0, 0, time.Local)

	cases := map[string]int{
		"2024-05-30": 3,
		"2024-05-27": 0,
		"2024-05-20": -7,
		"2024-06-27": 31,
	}
	for end, want := range cases {
		got, err := DaysRemaining(end, today)
		require.NoError(t, err)
		assert.Equal(t, want, got, end)
	}

	_, err := DaysRemaining("bad", today)
	assert.Error(t, err)
}

func TestDaysRemainingUsesLocalMidnight(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	// 01:00 local on the 27th is still the 26th in UTC.
	today := time.Date(2024, 5, 27, 1, 0, 0, 0, riyadh)

	got, err := DaysRemaining("2024-05-30", today)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = DaysRemaining("2024-05-27", today)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestDaysRemainingAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	today := time.Date(2024, 3, 9, 20, 0, 0, 0, ny)

	got, err := DaysRemaining("2024-03-11", today)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = DaysRemaining("2024-03-08", time.Date(2024, 3, 10, 23, 30, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, -2, got)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, UrgencyUrgent, Classify(models.SprintActive, 3))
	assert.Equal(t, UrgencyUrgent, Classify(models.SprintActive, 0))
	assert.Equal(t, UrgencyNone, Classify(models.SprintActive, 4))
	assert.Equal(t, UrgencyOverdue, Classify(models.SprintActive, -1))
	assert.Equal(t, UrgencyNone, Classify(models.SprintPlanned, -1))
	assert.Equal(t, UrgencyNone, Classify(models.SprintClosed, 1))
}

func TestCountdownFor(t *testing.T) {
	s := newSprint(t, "2024-05-29")
	s.Status = models.SprintActive

	cd, err := CountdownFor(s, stamp)
	require.NoError(t, err)
	assert.Equal(t, Countdown{SprintID: "spr-1", EndDate: "2024-05-29", DaysRemaining: 2, Urgency: UrgencyUrgent}, cd)
}
