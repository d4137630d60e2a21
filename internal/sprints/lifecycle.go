// Package sprints implements the sprint lifecycle: status transitions, the
// reschedule audit trail and the deadline countdown. Functions mutate the
// sprint they are given only when every check passes.
package sprints

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"engboard/internal/access"
	"engboard/internal/models"
)

// DefaultLengthDays is the sprint length used when no end date is supplied.
const DefaultLengthDays = 14

// New builds a PLANNED sprint. An empty end date defaults to start plus
// DefaultLengthDays calendar days.
func New(id, name, projectID, startDate, endDate string) (models.Sprint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Sprint{}, models.Invalid("name", "must not be empty")
	}
	if strings.TrimSpace(projectID) == "" {
		return models.Sprint{}, models.Invalid("project_id", "must not be empty")
	}
	start, err := models.ParseDate(startDate)
	if err != nil {
		return models.Sprint{}, models.Invalid("start_date", err.Error())
	}
	if endDate == "" {
		endDate = start.AddDate(0, 0, DefaultLengthDays).Format(models.DateLayout)
	}
	end, err := models.ParseDate(endDate)
	if err != nil {
		return models.Sprint{}, models.Invalid("end_date", err.Error())
	}
	if end.Before(start) {
		return models.Sprint{}, models.Invalid("end_date", "must not be before start_date")
	}

	return models.Sprint{
		ID:         id,
		Name:       name,
		ProjectID:  projectID,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     models.SprintPlanned,
		Extensions: []models.Extension{},
	}, nil
}

func allowed(from, to models.SprintStatus) bool {
	switch from {
	case models.SprintPlanned:
		return to == models.SprintActive
	case models.SprintActive:
		return to == models.SprintClosed
	case models.SprintClosed:
		return to == models.SprintActive
	default:
		return false
	}
}

func transition(s *models.Sprint, to models.SprintStatus) error {
	if !allowed(s.Status, to) {
		return fmt.Errorf("sprint %q %s -> %s: %w", s.ID, s.Status, to, models.ErrInvalidTransition)
	}
	s.Status = to
	return nil
}

// Activate moves a PLANNED sprint to ACTIVE. Activating a CLOSED sprint is a
// reopen and therefore needs the admin role.
func Activate(s *models.Sprint, role models.Role) error {
	if s.Status == models.SprintClosed {
		return Reopen(s, role)
	}
	if err := access.Require(access.SprintActivate, role); err != nil {
		return err
	}
	return transition(s, models.SprintActive)
}

// Close moves an ACTIVE sprint to CLOSED.
func Close(s *models.Sprint, role models.Role) error {
	if err := access.Require(access.SprintClose, role); err != nil {
		return err
	}
	return transition(s, models.SprintClosed)
}

// Reopen moves a CLOSED sprint back to ACTIVE.
func Reopen(s *models.Sprint, role models.Role) error {
	if err := access.Require(access.SprintReopen, role); err != nil {
		return err
	}
	if s.Status != models.SprintClosed {
		return fmt.Errorf("sprint %q is %s, only CLOSED sprints reopen: %w", s.ID, s.Status, models.ErrInvalidTransition)
	}
	return transition(s, models.SprintActive)
}

// CanDelete reports whether role may remove a sprint with its history.
func CanDelete(role models.Role) error {
	return access.Require(access.SprintDelete, role)
}

// Reschedule moves the sprint end date and appends the matching extension.
// CLOSED sprints cannot be rescheduled and the end date never moves backwards.
func Reschedule(s *models.Sprint, newEndDate, reason string, actor models.Actor, id string, at time.Time) (models.Extension, error) {
	if err := access.Require(access.SprintReschedule, actor.Role); err != nil {
		return models.Extension{}, err
	}
	if s.Status == models.SprintClosed {
		return models.Extension{}, fmt.Errorf("sprint %q is closed: %w", s.ID, models.ErrInvalidTransition)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Extension{}, models.Invalid("reason", "must not be empty")
	}
	next, err := models.ParseDate(newEndDate)
	if err != nil {
		return models.Extension{}, models.Invalid("new_end_date", err.Error())
	}
	current, err := models.ParseDate(s.EndDate)
	if err != nil {
		return models.Extension{}, fmt.Errorf("sprint %q has a corrupt end date: %w", s.ID, err)
	}
	if next.Before(current) {
		return models.Extension{}, models.Invalid("new_end_date", fmt.Sprintf("must not be before current end date %s", s.EndDate))
	}

	ext := models.Extension{
		ID:         id,
		OldEndDate: s.EndDate,
		NewEndDate: newEndDate,
		Reason:     reason,
		ExtendedAt: at.UTC(),
		ExtendedBy: actor.ID,
	}
	s.Extensions = append(slices.Clip(s.Extensions), ext)
	s.EndDate = newEndDate
	return ext, nil
}
