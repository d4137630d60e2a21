package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"engboard/internal/access"
	"engboard/internal/board"
	"engboard/internal/events"
	"engboard/internal/milestones"
	"engboard/internal/models"
)

// KickoffLabel names the milestone every new project starts with.
const KickoffLabel = "Project kickoff and drawings preparation"

// ProjectInput carries the editable project fields.
type ProjectInput struct {
	Name         string               `json:"name"`
	Client       string               `json:"client"`
	Budget       float64              `json:"budget"`
	Status       models.ProjectStatus `json:"status"`
	Deadline     string               `json:"deadline"`
	ManagerID    string               `json:"manager_id"`
	DepartmentID string               `json:"department_id"`
	Progress     int                  `json:"progress"`
}

func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return models.Invalid("name", "must not be empty")
	}
	if in.Status != "" && !in.Status.Valid() {
		return models.Invalid("status", fmt.Sprintf("unknown status %q", in.Status))
	}
	if in.Deadline != "" {
		if _, err := models.ParseDate(in.Deadline); err != nil {
			return models.Invalid("deadline", err.Error())
		}
	}
	if in.Budget < 0 {
		return models.Invalid("budget", "must not be negative")
	}
	if in.Progress < 0 || in.Progress > 100 {
		return models.Invalid("progress", "must be between 0 and 100")
	}
	return nil
}

func (in ProjectInput) apply(p *models.Project) {
	p.Name = strings.TrimSpace(in.Name)
	p.Client = strings.TrimSpace(in.Client)
	p.Budget = in.Budget
	if in.Status != "" {
		p.Status = in.Status
	}
	p.Deadline = in.Deadline
	p.ManagerID = in.ManagerID
	p.DepartmentID = in.DepartmentID
	p.Progress = in.Progress
}

// ListProjects returns every project.
func (s *Service) ListProjects(context.Context) []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneProjects(s.projects)
}

// GetProject returns one project.
func (s *Service) GetProject(_ context.Context, id string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.projectIndex(id)
	if idx < 0 {
		return models.Project{}, s.notFound("project", id)
	}
	return s.projects[idx].Clone(), nil
}

// CreateProject adds a project seeded with its kickoff milestone.
func (s *Service) CreateProject(ctx context.Context, actor models.Actor, in ProjectInput) (models.Project, error) {
	if err := access.Require(access.ProjectCreate, actor.Role); err != nil {
		return models.Project{}, err
	}
	if err := in.validate(); err != nil {
		return models.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Project{ID: s.newID(), Status: models.ProjectActive}
	in.apply(&p)
	if err := milestones.Seed(&p, s.newID(), KickoffLabel, s.now().Format(models.DateLayout)); err != nil {
		return models.Project{}, err
	}

	next := append(models.CloneProjects(s.projects), p)
	if err := s.repo.SaveProjects(ctx, next); err != nil {
		return models.Project{}, fmt.Errorf("save projects: %w", err)
	}
	s.projects = next
	return p.Clone(), nil
}

// UpdateProject edits project fields; milestones are left untouched. Only
// admins edit projects outside their own department.
func (s *Service) UpdateProject(ctx context.Context, actor models.Actor, id string, in ProjectInput) (models.Project, error) {
	if err := access.Require(access.ProjectEdit, actor.Role); err != nil {
		return models.Project{}, err
	}
	if err := in.validate(); err != nil {
		return models.Project{}, err
	}
	return s.mutateOpenProject(ctx, actor, access.ProjectEdit, id, func(p *models.Project) error {
		in.apply(p)
		return nil
	})
}

// DeleteProject removes a project. Tasks and sprints keep their reference.
func (s *Service) DeleteProject(ctx context.Context, actor models.Actor, id string) error {
	if err := access.Require(access.ProjectDelete, actor.Role); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.projectIndex(id)
	if idx < 0 {
		return s.notFound("project", id)
	}
	next := slices.Delete(models.CloneProjects(s.projects), idx, idx+1)
	if err := s.repo.SaveProjects(ctx, next); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	s.projects = next
	return nil
}

// ProjectProgress returns the weighted completion percentage of a project.
func (s *Service) ProjectProgress(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.projectIndex(id)
	if idx < 0 {
		return 0, s.notFound("project", id)
	}
	return board.Progress(s.projects[idx], s.tasks), nil
}

// ListMilestones returns the milestones of a project in insertion order, or
// sorted by target date when byDate is set.
func (s *Service) ListMilestones(ctx context.Context, actor models.Actor, projectID string, byDate bool) ([]models.Milestone, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireProject(access.ProjectOpen, actor, p); err != nil {
		return nil, err
	}
	if byDate {
		return milestones.ByDate(p.Milestones), nil
	}
	return p.Milestones, nil
}

// AddMilestone appends a PENDING milestone.
func (s *Service) AddMilestone(ctx context.Context, actor models.Actor, projectID, label, date string) (models.Milestone, error) {
	var m models.Milestone
	_, err := s.mutateOpenProject(ctx, actor, access.MilestoneManage, projectID, func(p *models.Project) error {
		var err error
		m, err = milestones.Add(p, s.newID(), label, date)
		return err
	})
	if err != nil {
		return models.Milestone{}, err
	}
	s.publishMilestone(projectID, actor, m)
	return m, nil
}

// CycleMilestone advances a milestone around the status ring.
func (s *Service) CycleMilestone(ctx context.Context, actor models.Actor, projectID, milestoneID string) (models.Milestone, error) {
	var m models.Milestone
	_, err := s.mutateOpenProject(ctx, actor, access.MilestoneManage, projectID, func(p *models.Project) error {
		var err error
		m, err = milestones.Cycle(p, milestoneID)
		return err
	})
	if err != nil {
		return models.Milestone{}, err
	}
	s.publishMilestone(projectID, actor, m)
	return m, nil
}

// DeleteMilestone removes a milestone from its project.
func (s *Service) DeleteMilestone(ctx context.Context, actor models.Actor, projectID, milestoneID string) error {
	_, err := s.mutateOpenProject(ctx, actor, access.MilestoneManage, projectID, func(p *models.Project) error {
		return milestones.Delete(p, milestoneID)
	})
	if err != nil {
		return err
	}
	s.publishMilestone(projectID, actor, models.Milestone{ID: milestoneID, Status: "DELETED"})
	return nil
}

func (s *Service) publishMilestone(projectID string, actor models.Actor, m models.Milestone) {
	s.publish(events.ProjectMilestoneChange, projectID, actor, map[string]string{
		"milestone_id": m.ID,
		"label":        m.Label,
		"status":       string(m.Status),
	})
}

func (s *Service) mutateProject(ctx context.Context, id string, fn func(*models.Project) error) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.projectIndex(id)
	if idx < 0 {
		return models.Project{}, s.notFound("project", id)
	}
	next := models.CloneProjects(s.projects)
	if err := fn(&next[idx]); err != nil {
		return models.Project{}, err
	}
	if err := s.repo.SaveProjects(ctx, next); err != nil {
		return models.Project{}, fmt.Errorf("save projects: %w", err)
	}
	s.projects = next
	return next[idx].Clone(), nil
}

// mutateOpenProject is mutateProject behind op and the department lock.
func (s *Service) mutateOpenProject(ctx context.Context, actor models.Actor, op access.Operation, id string, fn func(*models.Project) error) (models.Project, error) {
	return s.mutateProject(ctx, id, func(p *models.Project) error {
		if err := access.RequireProject(op, actor, *p); err != nil {
			return err
		}
		return fn(p)
	})
}

func (s *Service) projectIndex(id string) int {
	return slices.IndexFunc(s.projects, func(p models.Project) bool { return p.ID == id })
}
