package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"engboard/internal/models"
)

// LoadEmployees returns the employee directory in stored order.
func (s *Store) LoadEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, role, department_id, kpi, joined_date
        FROM employees ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.DepartmentID, &e.KPI, &e.JoinedDate); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// SaveEmployees replaces the employee directory.
func (s *Store) SaveEmployees(ctx context.Context, employees []models.Employee) error {
	return s.replace(ctx, "employees", func(tx *sql.Tx) error {
		for i, e := range employees {
			_, err := tx.ExecContext(ctx, `INSERT INTO employees(id, name, email, role, department_id, kpi, joined_date, position)
                VALUES(?, ?, ?, ?, ?, ?, ?, ?)`, e.ID, e.Name, e.Email, e.Role, e.DepartmentID, e.KPI, e.JoinedDate, i)
			if err != nil {
				return fmt.Errorf("insert employee %q: %w", e.ID, err)
			}
		}
		return nil
	})
}

// LoadProjects returns projects with their milestones in insertion order.
func (s *Store) LoadProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, client, budget, status, deadline, manager_id, department_id, progress
        FROM projects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	index := map[string]int{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Client, &p.Budget, &p.Status, &p.Deadline, &p.ManagerID, &p.DepartmentID, &p.Progress); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Milestones = []models.Milestone{}
		index[p.ID] = len(projects)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := s.db.QueryContext(ctx, `SELECT project_id, id, label, date, status FROM milestones ORDER BY project_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var projectID string
		var m models.Milestone
		if err := mrows.Scan(&projectID, &m.ID, &m.Label, &m.Date, &m.Status); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		if i, ok := index[projectID]; ok {
			projects[i].Milestones = append(projects[i].Milestones, m)
		}
	}
	return projects, mrows.Err()
}

// SaveProjects replaces all projects and their milestones.
func (s *Store) SaveProjects(ctx context.Context, projects []models.Project) error {
	return s.replace(ctx, "projects", func(tx *sql.Tx) error {
		for i, p := range projects {
			_, err := tx.ExecContext(ctx, `INSERT INTO projects(id, name, client, budget, status, deadline, manager_id, department_id, progress, position)
                VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.Name, p.Client, p.Budget, p.Status, p.Deadline, p.ManagerID, p.DepartmentID, p.Progress, i)
			if err != nil {
				return fmt.Errorf("insert project %q: %w", p.ID, err)
			}
			for j, m := range p.Milestones {
				_, err := tx.ExecContext(ctx, `INSERT INTO milestones(project_id, id, label, date, status, position) VALUES(?, ?, ?, ?, ?, ?)`,
					p.ID, m.ID, m.Label, m.Date, m.Status, j)
				if err != nil {
					return fmt.Errorf("insert milestone %q: %w", m.ID, err)
				}
			}
		}
		return nil
	})
}

// LoadTasks returns every task in stored order.
func (s *Store) LoadTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, status, priority, assigned_to, department_id, project_id,
        due_date, estimated_hours, actual_hours, kpi_points, weight, attachments, comments
        FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		var attachments, comments string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssignedTo, &t.DepartmentID, &t.ProjectID,
			&t.DueDate, &t.EstimatedHours, &t.ActualHours, &t.KPIPoints, &t.Weight, &attachments, &comments); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if err := json.Unmarshal([]byte(attachments), &t.Attachments); err != nil {
			return nil, fmt.Errorf("decode attachments of %q: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(comments), &t.Comments); err != nil {
			return nil, fmt.Errorf("decode comments of %q: %w", t.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SaveTasks replaces all tasks.
func (s *Store) SaveTasks(ctx context.Context, tasks []models.Task) error {
	return s.replace(ctx, "tasks", func(tx *sql.Tx) error {
		for i, t := range tasks {
			attachments, err := encodeList(t.Attachments)
			if err != nil {
				return fmt.Errorf("encode attachments of %q: %w", t.ID, err)
			}
			comments, err := encodeList(t.Comments)
			if err != nil {
				return fmt.Errorf("encode comments of %q: %w", t.ID, err)
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO tasks(id, title, description, status, priority, assigned_to, department_id, project_id,
                due_date, estimated_hours, actual_hours, kpi_points, weight, attachments, comments, position)
                VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.DepartmentID, t.ProjectID,
				t.DueDate, t.EstimatedHours, t.ActualHours, t.KPIPoints, t.Weight, attachments, comments, i)
			if err != nil {
				return fmt.Errorf("insert task %q: %w", t.ID, err)
			}
		}
		return nil
	})
}

// LoadSprints returns every sprint with its extension history.
func (s *Store) LoadSprints(ctx context.Context) ([]models.Sprint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, project_id, start_date, end_date, status FROM sprints ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	defer rows.Close()

	sprints := []models.Sprint{}
	index := map[string]int{}
	for rows.Next() {
		var sp models.Sprint
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.ProjectID, &sp.StartDate, &sp.EndDate, &sp.Status); err != nil {
			return nil, fmt.Errorf("scan sprint: %w", err)
		}
		sp.Extensions = []models.Extension{}
		index[sp.ID] = len(sprints)
		sprints = append(sprints, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	erows, err := s.db.QueryContext(ctx, `SELECT sprint_id, id, old_end_date, new_end_date, reason, extended_at, extended_by
        FROM sprint_extensions ORDER BY sprint_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	defer erows.Close()

	for erows.Next() {
		var sprintID string
		var e models.Extension
		if err := erows.Scan(&sprintID, &e.ID, &e.OldEndDate, &e.NewEndDate, &e.Reason, &e.ExtendedAt, &e.ExtendedBy); err != nil {
			return nil, fmt.Errorf("scan extension: %w", err)
		}
		if i, ok := index[sprintID]; ok {
			sprints[i].Extensions = append(sprints[i].Extensions, e)
		}
	}
	return sprints, erows.Err()
}

// SaveSprints replaces all sprints and their extension history.
func (s *Store) SaveSprints(ctx context.Context, sprints []models.Sprint) error {
	return s.replace(ctx, "sprints", func(tx *sql.Tx) error {
		for i, sp := range sprints {
			_, err := tx.ExecContext(ctx, `INSERT INTO sprints(id, name, project_id, start_date, end_date, status, position)
                VALUES(?, ?, ?, ?, ?, ?, ?)`, sp.ID, sp.Name, sp.ProjectID, sp.StartDate, sp.EndDate, sp.Status, i)
			if err != nil {
				return fmt.Errorf("insert sprint %q: %w", sp.ID, err)
			}
			for seq, e := range sp.Extensions {
				_, err := tx.ExecContext(ctx, `INSERT INTO sprint_extensions(sprint_id, id, old_end_date, new_end_date, reason, extended_at, extended_by, seq)
                    VALUES(?, ?, ?, ?, ?, ?, ?, ?)`, sp.ID, e.ID, e.OldEndDate, e.NewEndDate, e.Reason, e.ExtendedAt, e.ExtendedBy, seq)
				if err != nil {
					return fmt.Errorf("insert extension %q: %w", e.ID, err)
				}
			}
		}
		return nil
	})
}

func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
