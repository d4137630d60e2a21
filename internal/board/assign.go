package board

import (
	"fmt"
	"slices"
	"strings"

	"engboard/internal/access"
	"engboard/internal/models"
)

const (
	// FallbackDepartment is used when an assignee has no department on record.
	FallbackDepartment = "arch"
	// DefaultWeight is the progress weight of a new task.
	DefaultWeight = 10
)

// Directory resolves employees for department lookups.
type Directory interface {
	Employee(id string) (models.Employee, bool)
}

// Assignment holds the fields shared by every task of one submission.
type Assignment struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	ProjectID      string              `json:"project_id"`
	Priority       models.TaskPriority `json:"priority"`
	DueDate        string              `json:"due_date"`
	EstimatedHours float64             `json:"estimated_hours"`
	KPIPoints      int                 `json:"kpi_points"`
	Weight         *int                `json:"weight"`
	Attachments    []models.Attachment `json:"attachments"`
}

// Fanout builds one NEW task per assignee from a single submission.
func Fanout(a Assignment, assigneeIDs []string, dir Directory, newID func() string) ([]models.Task, error) {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return nil, models.Invalid("title", "must not be empty")
	}
	ids := uniqueIDs(assigneeIDs)
	if len(ids) == 0 {
		return nil, models.Invalid("assignees", "select at least one employee")
	}

	priority := a.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, models.Invalid("priority", fmt.Sprintf("unknown priority %q", priority))
	}
	if a.DueDate != "" {
		if _, err := models.ParseDate(a.DueDate); err != nil {
			return nil, models.Invalid("due_date", err.Error())
		}
	}
	weight := DefaultWeight
	if a.Weight != nil {
		weight = *a.Weight
	}
	if weight < 0 {
		return nil, models.Invalid("weight", "must not be negative")
	}
	if a.EstimatedHours < 0 {
		return nil, models.Invalid("estimated_hours", "must not be negative")
	}

	tasks := make([]models.Task, 0, len(ids))
	for _, empID := range ids {
		dept := FallbackDepartment
		if emp, ok := dir.Employee(empID); ok && emp.DepartmentID != "" {
			dept = emp.DepartmentID
		}
		tasks = append(tasks, models.Task{
			ID:             newID(),
			Title:          title,
			Description:    strings.TrimSpace(a.Description),
			Status:         models.TaskNew,
			Priority:       priority,
			AssignedTo:     empID,
			DepartmentID:   dept,
			ProjectID:      a.ProjectID,
			DueDate:        a.DueDate,
			EstimatedHours: a.EstimatedHours,
			KPIPoints:      a.KPIPoints,
			Weight:         weight,
			Attachments:    append([]models.Attachment{}, a.Attachments...),
			Comments:       []models.Comment{},
		})
	}
	return tasks, nil
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Patch carries the fields changed by the task detail form. Nil means unchanged.
type Patch struct {
	Title          *string              `json:"title"`
	Description    *string              `json:"description"`
	Status         *models.TaskStatus   `json:"status"`
	Priority       *models.TaskPriority `json:"priority"`
	AssignedTo     *string              `json:"assigned_to"`
	DepartmentID   *string              `json:"department_id"`
	ProjectID      *string              `json:"project_id"`
	DueDate        *string              `json:"due_date"`
	EstimatedHours *float64             `json:"estimated_hours"`
	ActualHours    *float64             `json:"actual_hours"`
	KPIPoints      *int                 `json:"kpi_points"`
	Weight         *int                 `json:"weight"`
	Attachments    []models.Attachment  `json:"attachments"`
}

// managedField names the first set field that only managers may change.
// Scoring, weighting and routing a card are decisions above the assignee.
func (p Patch) managedField() string {
	switch {
	case p.KPIPoints != nil:
		return "kpi_points"
	case p.Weight != nil:
		return "weight"
	case p.AssignedTo != nil:
		return "assigned_to"
	case p.DepartmentID != nil:
		return "department_id"
	}
	return ""
}

// ApplyEdit validates p as a whole and then applies it to t.
func ApplyEdit(t *models.Task, p Patch, actor models.Actor) error {
	if !access.CanTouchTask(access.TaskEditAny, actor, *t) {
		return &models.PermissionError{Op: string(access.TaskEditAny), Role: actor.Role}
	}
	if field := p.managedField(); field != "" && !access.Allowed(access.TaskEditAny, actor.Role) {
		return &models.PermissionError{Op: string(access.TaskEditAny) + " " + field, Role: actor.Role}
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return models.Invalid("title", "must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return models.Invalid("status", fmt.Sprintf("unknown status %q", *p.Status))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return models.Invalid("priority", fmt.Sprintf("unknown priority %q", *p.Priority))
	}
	if p.AssignedTo != nil && strings.TrimSpace(*p.AssignedTo) == "" {
		return models.Invalid("assigned_to", "must not be empty")
	}
	if p.DueDate != nil && *p.DueDate != "" {
		if _, err := models.ParseDate(*p.DueDate); err != nil {
			return models.Invalid("due_date", err.Error())
		}
	}
	if p.Weight != nil && *p.Weight < 0 {
		return models.Invalid("weight", "must not be negative")
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		return models.Invalid("estimated_hours", "must not be negative")
	}
	if p.ActualHours != nil && *p.ActualHours < 0 {
		return models.Invalid("actual_hours", "must not be negative")
	}

	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = strings.TrimSpace(*p.AssignedTo)
	}
	if p.DepartmentID != nil {
		t.DepartmentID = *p.DepartmentID
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.ActualHours != nil {
		t.ActualHours = *p.ActualHours
	}
	if p.KPIPoints != nil {
		t.KPIPoints = *p.KPIPoints
	}
	if p.Weight != nil {
		t.Weight = *p.Weight
	}
	if p.Attachments != nil {
		t.Attachments = append([]models.Attachment{}, p.Attachments...)
	}
	return nil
}

// AddComment appends a non-empty comment to t. The author must see the card
// in their team pool.
func AddComment(t *models.Task, c models.Comment, author models.Actor) error {
	if !Visible(*t, author) {
		return &models.PermissionError{Op: "task.comment", Role: author.Role}
	}
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return models.Invalid("text", "must not be empty")
	}
	t.Comments = append(slices.Clip(t.Comments), c)
	return nil
}
