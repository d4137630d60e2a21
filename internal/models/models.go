package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for due dates, sprint bounds and milestones.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseDateIn parses a YYYY-MM-DD date as midnight in loc.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Role is the access level of an employee.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleDeptManager Role = "DEPT_MANAGER"
	RoleTeamLeader  Role = "TEAM_LEADER"
	RoleEmployee    Role = "EMPLOYEE"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDeptManager, RoleTeamLeader, RoleEmployee:
		return true
	}
	return false
}

// Actor is the already-authenticated identity performing an operation.
type Actor struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	DepartmentID string `json:"department_id"`
}

// Employee is a directory entry referenced by tasks and projects.
type Employee struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Email        string `json:"email" yaml:"email"`
	Role         Role   `json:"role" yaml:"role"`
	DepartmentID string `json:"department_id" yaml:"department_id"`
	KPI          int    `json:"kpi" yaml:"kpi"`
	JoinedDate   string `json:"joined_date" yaml:"joined_date"`
}

// TaskStatus is a Kanban board column.
type TaskStatus string

const (
	TaskNew        TaskStatus = "NEW"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskReview     TaskStatus = "REVIEW"
	TaskPending    TaskStatus = "PENDING"
	TaskCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses lists the board columns in display order.
var TaskStatuses = []TaskStatus{TaskNew, TaskInProgress, TaskReview, TaskPending, TaskCompleted}

// Valid reports whether s is one of the board columns.
func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TaskPriority ranks tasks on the board.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Attachment is a resolved reference to an uploaded file; the bytes live elsewhere.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	MimeType   string    `json:"mime_type,omitempty"`
	Provider   string    `json:"provider"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Comment is a note left on a task.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Task represents a single card on the board.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	AssignedTo     string       `json:"assigned_to"`
	DepartmentID   string       `json:"department_id"`
	ProjectID      string       `json:"project_id,omitempty"`
	DueDate        string       `json:"due_date"`
	EstimatedHours float64      `json:"estimated_hours"`
	ActualHours    float64      `json:"actual_hours"`
	KPIPoints      int          `json:"kpi_points"`
	Weight         int          `json:"weight"`
	Attachments    []Attachment `json:"attachments"`
	Comments       []Comment    `json:"comments"`
}

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned SprintStatus = "PLANNED"
	SprintActive  SprintStatus = "ACTIVE"
	SprintClosed  SprintStatus = "CLOSED"
)

// Valid reports whether s is a known sprint status.
func (s SprintStatus) Valid() bool {
	switch s {
	case SprintPlanned, SprintActive, SprintClosed:
		return true
	}
	return false
}

// Extension is an append-only record of a sprint deadline being moved.
type Extension struct {
	ID         string    `json:"id"`
	OldEndDate string    `json:"old_end_date"`
	NewEndDate string    `json:"new_end_date"`
	Reason     string    `json:"reason"`
	ExtendedAt time.Time `json:"extended_at"`
	ExtendedBy string    `json:"extended_by"`
}

// Sprint is a time-boxed unit of work inside one project.
type Sprint struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	ProjectID  string       `json:"project_id"`
	StartDate  string       `json:"start_date"`
	EndDate    string       `json:"end_date"`
	Status     SprintStatus `json:"status"`
	Extensions []Extension  `json:"extensions"`
}

// MilestoneStatus is a step in the milestone ring.
type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "PENDING"
	MilestoneCurrent   MilestoneStatus = "CURRENT"
	MilestoneCompleted MilestoneStatus = "COMPLETED"
)

// Valid reports whether s is a known milestone status.
func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneCurrent, MilestoneCompleted:
		return true
	}
	return false
}

// Milestone is a timeline entry of a project.
type Milestone struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Date   string          `json:"date"`
	Status MilestoneStatus `json:"status"`
}

// ProjectStatus describes where a project stands commercially.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// Project groups tasks and sprints for one client engagement.
type Project struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Client       string        `json:"client" yaml:"client"`
	Budget       float64       `json:"budget" yaml:"budget"`
	Status       ProjectStatus `json:"status" yaml:"status"`
	Deadline     string        `json:"deadline" yaml:"deadline"`
	ManagerID    string        `json:"manager_id" yaml:"manager_id"`
	DepartmentID string        `json:"department_id" yaml:"department_id"`
	Progress     int           `json:"progress" yaml:"progress"`
	Milestones   []Milestone   `json:"milestones" yaml:"milestones"`
}

// ViewMode selects the team-wide or the personal board.
type ViewMode string

const (
	ViewTeam     ViewMode = "TEAM"
	ViewPersonal ViewMode = "PERSONAL"
)

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	return m == ViewTeam || m == ViewPersonal
}
