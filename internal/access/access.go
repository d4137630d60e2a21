// Package access holds the authorization matrix for every board, sprint and
// project operation. Callers ask the table; they never compare roles inline.
package access

import "engboard/internal/models"

// Operation names a guarded action.
type Operation string

const (
	SprintCreate     Operation = "sprint.create"
	SprintActivate   Operation = "sprint.activate"
	SprintClose      Operation = "sprint.close"
	SprintReopen     Operation = "sprint.reopen"
	SprintReschedule Operation = "sprint.reschedule"
	SprintDelete     Operation = "sprint.delete"
	TaskCreate       Operation = "task.create"
	TaskMoveAny      Operation = "task.move.any"
	TaskEditAny      Operation = "task.edit.any"
	TaskDelete       Operation = "task.delete"
	ProjectCreate    Operation = "project.create"
	ProjectEdit      Operation = "project.edit"
	ProjectDelete    Operation = "project.delete"
	ProjectOpen      Operation = "project.open"
	MilestoneManage  Operation = "milestone.manage"
	ViewAllTasks     Operation = "task.view.all"
)

var (
	adminOnly  = roles(models.RoleAdmin)
	managers   = roles(models.RoleAdmin, models.RoleDeptManager, models.RoleTeamLeader)
	schedulers = roles(models.RoleAdmin, models.RoleDeptManager)
	everyone   = roles(models.RoleAdmin, models.RoleDeptManager, models.RoleTeamLeader, models.RoleEmployee)
)

var matrix = map[Operation]map[models.Role]struct{}{
	SprintCreate:     managers,
	SprintActivate:   managers,
	SprintClose:      managers,
	SprintReopen:     adminOnly,
	SprintReschedule: schedulers,
	SprintDelete:     managers,
	TaskCreate:       everyone,
	TaskMoveAny:      managers,
	TaskEditAny:      managers,
	TaskDelete:       adminOnly,
	ProjectCreate:    adminOnly,
	ProjectEdit:      managers,
	ProjectDelete:    adminOnly,
	ProjectOpen:      everyone,
	MilestoneManage:  managers,
	ViewAllTasks:     adminOnly,
}

func roles(rs ...models.Role) map[models.Role]struct{} {
	set := make(map[models.Role]struct{}, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

// Allowed reports whether role may perform op. Unknown pairs are denied.
func Allowed(op Operation, role models.Role) bool {
	_, ok := matrix[op][role]
	return ok
}

// Require returns a PermissionError when role may not perform op.
func Require(op Operation, role models.Role) error {
	if Allowed(op, role) {
		return nil
	}
	return &models.PermissionError{Op: string(op), Role: role}
}

// IsManager reports whether role belongs to the manager class.
func IsManager(role models.Role) bool {
	_, ok := managers[role]
	return ok
}

// CanTouchTask reports whether actor may move or edit task. Managers may touch
// any task; everyone else only their own.
func CanTouchTask(op Operation, actor models.Actor, task models.Task) bool {
	if Allowed(op, actor.Role) {
		return true
	}
	return actor.ID != "" && task.AssignedTo == actor.ID
}

// CanOpenProject reports whether actor may open the detail view of project:
// its fields and milestones. Admins open every project, everyone else only
// projects of their own department.
func CanOpenProject(actor models.Actor, project models.Project) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.DepartmentID != "" && project.DepartmentID == actor.DepartmentID
}

// RequireProject returns a PermissionError when actor may not perform op or
// may not open project.
func RequireProject(op Operation, actor models.Actor, project models.Project) error {
	if err := Require(op, actor.Role); err != nil {
		return err
	}
	if CanOpenProject(actor, project) {
		return nil
	}
	return &models.PermissionError{Op: string(op) + " on project " + project.ID, Role: actor.Role}
}

// Operations lists every guarded operation in declaration order.
func Operations() []Operation {
	return []Operation{
		SprintCreate, SprintActivate, SprintClose, SprintReopen, SprintReschedule, SprintDelete,
		TaskCreate, TaskMoveAny, TaskEditAny, TaskDelete,
		ProjectCreate, ProjectEdit, ProjectDelete, ProjectOpen, MilestoneManage, ViewAllTasks,
	}
}
