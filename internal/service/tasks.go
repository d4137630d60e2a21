package service

import (
	"context"
	"fmt"
	"slices"

	"engboard/internal/access"
	"engboard/internal/board"
	"engboard/internal/events"
	"engboard/internal/models"
)

// VisibleTasks returns the pool actor sees in the given view.
func (s *Service) VisibleTasks(_ context.Context, actor models.Actor, mode models.ViewMode) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneTasks(board.FilterVisible(s.tasks, actor, mode))
}

// Board returns the visible pool grouped into columns.
func (s *Service) Board(ctx context.Context, actor models.Actor, mode models.ViewMode) []board.Column {
	return board.Columns(s.VisibleTasks(ctx, actor, mode))
}

// CreateTasks fans one assignment out to one task per assignee.
func (s *Service) CreateTasks(ctx context.Context, actor models.Actor, a board.Assignment, assigneeIDs []string) ([]models.Task, error) {
	if err := access.Require(access.TaskCreate, actor.Role); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ProjectID != "" && s.projectIndex(a.ProjectID) < 0 {
		return nil, models.Invalid("project_id", fmt.Sprintf("unknown project %q", a.ProjectID))
	}
	created, err := board.Fanout(a, assigneeIDs, directory(s.employees), s.newID)
	if err != nil {
		return nil, err
	}

	next := append(models.CloneTasks(s.tasks), created...)
	if err := s.repo.SaveTasks(ctx, next); err != nil {
		return nil, fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = next

	for _, t := range created {
		s.publish(events.TaskCreated, t.ID, actor, map[string]string{"title": t.Title, "assigned_to": t.AssignedTo})
	}
	return models.CloneTasks(created), nil
}

// MoveTask drags a card to another column. A from value equal to to is a no-op.
func (s *Service) MoveTask(ctx context.Context, actor models.Actor, id string, from, to models.TaskStatus) (models.Task, error) {
	var moved bool
	var prev models.TaskStatus
	t, err := s.mutateTask(ctx, id, func(t *models.Task) (bool, error) {
		prev = t.Status
		if from != "" && from == to {
			return false, nil
		}
		var err error
		moved, err = board.Move(t, to, actor)
		return moved, err
	})
	if err != nil {
		return models.Task{}, err
	}
	if moved {
		s.publish(events.TaskMoved, t.ID, actor, map[string]string{
			"title": t.Title,
			"from":  string(prev),
			"to":    string(t.Status),
		})
	}
	return t, nil
}

// EditTask applies the detail form to a task.
func (s *Service) EditTask(ctx context.Context, actor models.Actor, id string, p board.Patch) (models.Task, error) {
	return s.mutateTask(ctx, id, func(t *models.Task) (bool, error) {
		if p.ProjectID != nil && *p.ProjectID != "" && s.projectIndex(*p.ProjectID) < 0 {
			return false, models.Invalid("project_id", fmt.Sprintf("unknown project %q", *p.ProjectID))
		}
		return true, board.ApplyEdit(t, p, actor)
	})
}

// AddComment appends a comment by actor to a task.
func (s *Service) AddComment(ctx context.Context, actor models.Actor, id, text string) (models.Task, error) {
	return s.mutateTask(ctx, id, func(t *models.Task) (bool, error) {
		return true, board.AddComment(t, models.Comment{
			ID:        s.newID(),
			AuthorID:  actor.ID,
			Text:      text,
			CreatedAt: s.now().UTC(),
		}, actor)
	})
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, actor models.Actor, id string) error {
	if err := access.Require(access.TaskDelete, actor.Role); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndex(id)
	if idx < 0 {
		return s.notFound("task", id)
	}
	removed := s.tasks[idx]
	next := slices.Delete(models.CloneTasks(s.tasks), idx, idx+1)
	if err := s.repo.SaveTasks(ctx, next); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = next

	s.publish(events.TaskDeleted, id, actor, map[string]string{"title": removed.Title})
	return nil
}

// mutateTask runs fn on a copy of the task; fn reports whether anything changed.
func (s *Service) mutateTask(ctx context.Context, id string, fn func(*models.Task) (bool, error)) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.taskIndex(id)
	if idx < 0 {
		return models.Task{}, s.notFound("task", id)
	}
	next := models.CloneTasks(s.tasks)
	changed, err := fn(&next[idx])
	if err != nil {
		return models.Task{}, err
	}
	if !changed {
		return s.tasks[idx].Clone(), nil
	}
	if err := s.repo.SaveTasks(ctx, next); err != nil {
		return models.Task{}, fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = next
	return next[idx].Clone(), nil
}

func (s *Service) taskIndex(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}
