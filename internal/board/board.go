// Package board is the Kanban task engine: the five column state machine,
// who may move a card, the team and personal views and project progress.
package board

import (
	"fmt"
	"math"

	"engboard/internal/access"
	"engboard/internal/models"
)

// transitions is the board's transition table. Every column may reach every
// other column so misplaced cards can be dragged back; completion is not final.
var transitions = func() map[models.TaskStatus]map[models.TaskStatus]struct{} {
	table := make(map[models.TaskStatus]map[models.TaskStatus]struct{}, len(models.TaskStatuses))
	for _, from := range models.TaskStatuses {
		table[from] = make(map[models.TaskStatus]struct{}, len(models.TaskStatuses))
		for _, to := range models.TaskStatuses {
			table[from][to] = struct{}{}
		}
	}
	return table
}()

// CanTransition reports whether the table has an edge from -> to.
func CanTransition(from, to models.TaskStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// Move sets the task status after checking the actor may touch the card.
// It reports false without error when the card is already in the column.
func Move(t *models.Task, to models.TaskStatus, actor models.Actor) (bool, error) {
	if !to.Valid() {
		return false, models.Invalid("status", fmt.Sprintf("unknown status %q", to))
	}
	if !access.CanTouchTask(access.TaskMoveAny, actor, *t) {
		return false, &models.PermissionError{Op: string(access.TaskMoveAny), Role: actor.Role}
	}
	if t.Status == to {
		return false, nil
	}
	if !CanTransition(t.Status, to) {
		return false, fmt.Errorf("task %q %s -> %s: %w", t.ID, t.Status, to, models.ErrInvalidTransition)
	}
	t.Status = to
	return true, nil
}

// Visible reports whether t is in the team pool of actor.
func Visible(t models.Task, actor models.Actor) bool {
	return access.Allowed(access.ViewAllTasks, actor.Role) || t.DepartmentID == actor.DepartmentID
}

// FilterVisible narrows the pool to what actor sees on the board. Admins see
// every department; everyone else sees their own. The personal view keeps
// only the actor's cards. Input order is preserved.
func FilterVisible(tasks []models.Task, actor models.Actor, mode models.ViewMode) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !Visible(t, actor) {
			continue
		}
		if mode == models.ViewPersonal && t.AssignedTo != actor.ID {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Column is one board lane.
type Column struct {
	Status models.TaskStatus `json:"status"`
	Count  int               `json:"count"`
	Tasks  []models.Task     `json:"tasks"`
}

// Columns groups tasks into lanes in board order.
func Columns(tasks []models.Task) []Column {
	cols := make([]Column, len(models.TaskStatuses))
	index := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for i, s := range models.TaskStatuses {
		cols[i] = Column{Status: s, Tasks: []models.Task{}}
		index[s] = i
	}
	for _, t := range tasks {
		i, ok := index[t.Status]
		if !ok {
			continue
		}
		cols[i].Tasks = append(cols[i].Tasks, t)
		cols[i].Count++
	}
	return cols
}

// Progress returns the weighted completion percentage of project. Projects
// without weighted tasks report their stored progress.
func Progress(project models.Project, tasks []models.Task) int {
	var total, done int
	for _, t := range tasks {
		if t.ProjectID == "" || t.ProjectID != project.ID {
			continue
		}
		total += t.Weight
		if t.Status == models.TaskCompleted {
			done += t.Weight
		}
	}
	if total <= 0 {
		return project.Progress
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
