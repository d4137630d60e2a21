// Package memory is an in-process repository. It keeps deep copies so callers
// can never alias stored state.
package memory

import (
	"context"
	"sync"

	"engboard/internal/models"
)

// Store holds every collection in memory.
type Store struct {
	mu        sync.Mutex
	employees []models.Employee
	projects  []models.Project
	tasks     []models.Task
	sprints   []models.Sprint

	// FailSaves makes every Save call return this error when set.
	FailSaves error
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// LoadEmployees returns a copy of the employee directory.
func (s *Store) LoadEmployees(context.Context) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Employee{}, s.employees...), nil
}

// SaveEmployees replaces the employee directory.
func (s *Store) SaveEmployees(_ context.Context, employees []models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	s.employees = append([]models.Employee{}, employees...)
	return nil
}

// LoadProjects returns deep copies of every project.
func (s *Store) LoadProjects(context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneProjects(s.projects), nil
}

// SaveProjects replaces the project collection.
func (s *Store) SaveProjects(_ context.Context, projects []models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	s.projects = models.CloneProjects(projects)
	return nil
}

// LoadTasks returns deep copies of every task.
func (s *Store) LoadTasks(context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneTasks(s.tasks), nil
}

// SaveTasks replaces the task collection.
func (s *Store) SaveTasks(_ context.Context, tasks []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	s.tasks = models.CloneTasks(tasks)
	return nil
}

// LoadSprints returns deep copies of every sprint.
func (s *Store) LoadSprints(context.Context) ([]models.Sprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneSprints(s.sprints), nil
}

// SaveSprints replaces the sprint collection.
func (s *Store) SaveSprints(_ context.Context, sprints []models.Sprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	s.sprints = models.CloneSprints(sprints)
	return nil
}
