package service

import (
	"context"
	"fmt"
	"slices"

	"engboard/internal/access"
	"engboard/internal/events"
	"engboard/internal/models"
	"engboard/internal/sprints"
)

// ListSprints returns every sprint, newest first as created.
func (s *Service) ListSprints(context.Context) []models.Sprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneSprints(s.sprints)
}

// GetSprint returns one sprint.
func (s *Service) GetSprint(_ context.Context, id string) (models.Sprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.sprintIndex(id)
	if idx < 0 {
		return models.Sprint{}, s.notFound("sprint", id)
	}
	return s.sprints[idx].Clone(), nil
}

// CreateSprint plans a new sprint for an existing project.
func (s *Service) CreateSprint(ctx context.Context, actor models.Actor, name, projectID, startDate, endDate string) (models.Sprint, error) {
	if err := access.Require(access.SprintCreate, actor.Role); err != nil {
		return models.Sprint{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if startDate == "" {
		startDate = s.now().Format(models.DateLayout)
	}
	sp, err := sprints.New(s.newID(), name, projectID, startDate, endDate)
	if err != nil {
		return models.Sprint{}, err
	}
	if s.projectIndex(projectID) < 0 {
		return models.Sprint{}, models.Invalid("project_id", fmt.Sprintf("unknown project %q", projectID))
	}

	next := append([]models.Sprint{sp}, models.CloneSprints(s.sprints)...)
	if err := s.repo.SaveSprints(ctx, next); err != nil {
		return models.Sprint{}, fmt.Errorf("save sprints: %w", err)
	}
	s.sprints = next

	s.publish(events.SprintCreated, sp.ID, actor, map[string]string{"name": sp.Name, "end_date": sp.EndDate})
	return sp.Clone(), nil
}

// ActivateSprint starts a PLANNED sprint or, for admins, reopens a CLOSED one.
func (s *Service) ActivateSprint(ctx context.Context, actor models.Actor, id string) (models.Sprint, error) {
	return s.changeStatus(ctx, actor, id, sprints.Activate)
}

// CloseSprint closes an ACTIVE sprint.
func (s *Service) CloseSprint(ctx context.Context, actor models.Actor, id string) (models.Sprint, error) {
	return s.changeStatus(ctx, actor, id, sprints.Close)
}

// ReopenSprint reactivates a CLOSED sprint.
func (s *Service) ReopenSprint(ctx context.Context, actor models.Actor, id string) (models.Sprint, error) {
	return s.changeStatus(ctx, actor, id, sprints.Reopen)
}

func (s *Service) changeStatus(ctx context.Context, actor models.Actor, id string, step func(*models.Sprint, models.Role) error) (models.Sprint, error) {
	var from models.SprintStatus
	sp, err := s.mutateSprint(ctx, id, func(sp *models.Sprint) error {
		from = sp.Status
		return step(sp, actor.Role)
	})
	if err != nil {
		return models.Sprint{}, err
	}
	s.publish(events.SprintStatusChanged, sp.ID, actor, map[string]string{
		"name": sp.Name,
		"from": string(from),
		"to":   string(sp.Status),
	})
	return sp, nil
}

// RescheduleSprint moves the end date and records the extension.
func (s *Service) RescheduleSprint(ctx context.Context, actor models.Actor, id, newEndDate, reason string) (models.Sprint, error) {
	var ext models.Extension
	sp, err := s.mutateSprint(ctx, id, func(sp *models.Sprint) error {
		var err error
		ext, err = sprints.Reschedule(sp, newEndDate, reason, actor, s.newID(), s.now())
		return err
	})
	if err != nil {
		return models.Sprint{}, err
	}
	s.publish(events.SprintRescheduled, sp.ID, actor, map[string]string{
		"name":         sp.Name,
		"old_end_date": ext.OldEndDate,
		"new_end_date": ext.NewEndDate,
		"reason":       ext.Reason,
	})
	return sp, nil
}

// DeleteSprint removes a sprint and its extension history for good.
func (s *Service) DeleteSprint(ctx context.Context, actor models.Actor, id string) error {
	if err := sprints.CanDelete(actor.Role); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.sprintIndex(id)
	if idx < 0 {
		return s.notFound("sprint", id)
	}
	removed := s.sprints[idx]
	next := slices.Delete(models.CloneSprints(s.sprints), idx, idx+1)
	if err := s.repo.SaveSprints(ctx, next); err != nil {
		return fmt.Errorf("save sprints: %w", err)
	}
	s.sprints = next

	s.publish(events.SprintDeleted, id, actor, map[string]string{"name": removed.Name})
	return nil
}

// SprintCountdown reports days left and the urgency flag for one sprint.
func (s *Service) SprintCountdown(ctx context.Context, id string) (sprints.Countdown, error) {
	sp, err := s.GetSprint(ctx, id)
	if err != nil {
		return sprints.Countdown{}, err
	}
	return sprints.CountdownFor(sp, s.now())
}

func (s *Service) mutateSprint(ctx context.Context, id string, fn func(*models.Sprint) error) (models.Sprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.sprintIndex(id)
	if idx < 0 {
		return models.Sprint{}, s.notFound("sprint", id)
	}
	next := models.CloneSprints(s.sprints)
	if err := fn(&next[idx]); err != nil {
		return models.Sprint{}, err
	}
	if err := s.repo.SaveSprints(ctx, next); err != nil {
		return models.Sprint{}, fmt.Errorf("save sprints: %w", err)
	}
	s.sprints = next
	return next[idx].Clone(), nil
}

func (s *Service) sprintIndex(id string) int {
	return slices.IndexFunc(s.sprints, func(sp models.Sprint) bool { return sp.ID == id })
}
