// Package service owns the board collections for a session and exposes the
// sprint, task and milestone operations as one API. Every mutation computes a
// new collection, persists it whole and only then makes it current.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"engboard/internal/events"
	"engboard/internal/models"
)

// Repository is the persistence collaborator. Save calls replace the whole
// collection.
type Repository interface {
	LoadEmployees(ctx context.Context) ([]models.Employee, error)
	SaveEmployees(ctx context.Context, employees []models.Employee) error
	LoadProjects(ctx context.Context) ([]models.Project, error)
	SaveProjects(ctx context.Context, projects []models.Project) error
	LoadTasks(ctx context.Context) ([]models.Task, error)
	SaveTasks(ctx context.Context, tasks []models.Task) error
	LoadSprints(ctx context.Context) ([]models.Sprint, error)
	SaveSprints(ctx context.Context, sprints []models.Sprint) error
}

// Options tune a Service. Zero values fall back to sensible defaults.
type Options struct {
	Logger *slog.Logger
	Events events.Publisher
	Now    func() time.Time
	NewID  func() string
}

// Service serializes every operation over the in-memory collections.
type Service struct {
	mu     sync.Mutex
	repo   Repository
	logger *slog.Logger
	events events.Publisher
	now    func() time.Time
	newID  func() string

	employees []models.Employee
	projects  []models.Project
	tasks     []models.Task
	sprints   []models.Sprint

	// alerted remembers the last deadline alert per entity so a scan only
	// repeats an alert when the deadline or urgency changed.
	alerted map[string]string
}

// New loads every collection from repo.
func New(ctx context.Context, repo Repository, opts Options) (*Service, error) {
	s := &Service{
		repo:   repo,
		logger: opts.Logger,
		events: opts.Events,
		now:    opts.Now,
		newID:  opts.NewID,

		alerted: make(map[string]string),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.events == nil {
		s.events = events.Discard{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	var err error
	if s.employees, err = repo.LoadEmployees(ctx); err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	if s.projects, err = repo.LoadProjects(ctx); err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	if s.tasks, err = repo.LoadTasks(ctx); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if s.sprints, err = repo.LoadSprints(ctx); err != nil {
		return nil, fmt.Errorf("load sprints: %w", err)
	}

	s.logger.Info("collections loaded",
		"employees", len(s.employees),
		"projects", len(s.projects),
		"tasks", len(s.tasks),
		"sprints", len(s.sprints))
	return s, nil
}

// Seed stores employees and projects when the respective collection is empty.
func (s *Service) Seed(ctx context.Context, employees []models.Employee, projects []models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.employees) == 0 && len(employees) > 0 {
		for _, e := range employees {
			if e.ID == "" || !e.Role.Valid() {
				return models.Invalid("employees", fmt.Sprintf("employee %q needs an id and a valid role", e.Name))
			}
		}
		next := append([]models.Employee{}, employees...)
		if err := s.repo.SaveEmployees(ctx, next); err != nil {
			return fmt.Errorf("save employees: %w", err)
		}
		s.employees = next
		s.logger.Info("seeded employees", "count", len(next))
	}

	if len(s.projects) == 0 && len(projects) > 0 {
		next := models.CloneProjects(projects)
		for i := range next {
			if next[i].ID == "" {
				next[i].ID = s.newID()
			}
			if next[i].Status == "" {
				next[i].Status = models.ProjectActive
			}
			for j := range next[i].Milestones {
				if next[i].Milestones[j].ID == "" {
					next[i].Milestones[j].ID = s.newID()
				}
			}
		}
		if err := s.repo.SaveProjects(ctx, next); err != nil {
			return fmt.Errorf("save projects: %w", err)
		}
		s.projects = next
		s.logger.Info("seeded projects", "count", len(next))
	}
	return nil
}

// ListEmployees returns the employee directory.
func (s *Service) ListEmployees(context.Context) []models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Employee{}, s.employees...)
}

// directory adapts the employee slice for department lookups.
type directory []models.Employee

func (d directory) Employee(id string) (models.Employee, bool) {
	for _, e := range d {
		if e.ID == id {
			return e, true
		}
	}
	return models.Employee{}, false
}

func (s *Service) publish(kind events.Kind, entityID string, actor models.Actor, attrs map[string]string) {
	s.events.Publish(events.Event{
		Kind:     kind,
		EntityID: entityID,
		ActorID:  actor.ID,
		At:       s.now().UTC(),
		Attrs:    attrs,
	})
}

func (s *Service) notFound(kind, id string) error {
	s.logger.Warn("entity not found", "kind", kind, "id", id)
	return models.NotFound(kind, id)
}
