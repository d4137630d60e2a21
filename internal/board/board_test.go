package board

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engboard/internal/models"
)

type directory map[string]models.Employee

func (d directory) Employee(id string) (models.Employee, bool) {
	e, ok := d[id]
	return e, ok
}

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func pool() []models.Task {
	return []models.Task{
		{ID: "t1", AssignedTo: "e1", DepartmentID: "civil", Status: models.TaskNew},
		{ID: "t2", AssignedTo: "e2", DepartmentID: "civil", Status: models.TaskReview},
		{ID: "t3", AssignedTo: "e1", DepartmentID: "arch", Status: models.TaskCompleted},
		{ID: "t4", AssignedTo: "e3", DepartmentID: "arch", Status: models.TaskNew},
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestTransitionTableIsComplete(t *testing.T) {
	for _, from := range models.TaskStatuses {
		for _, to := range models.TaskStatuses {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition(models.TaskNew, "DONE"))
}

func TestMove(t *testing.T) {
	task := models.Task{ID: "t1", AssignedTo: "e1", Status: models.TaskCompleted}

	changed, err := Move(&task, models.TaskNew, models.Actor{ID: "e1", Role: models.RoleEmployee})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.TaskNew, task.Status)

	changed, err = Move(&task, models.TaskNew, models.Actor{ID: "e1", Role: models.RoleEmployee})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = Move(&task, models.TaskReview, models.Actor{ID: "lead", Role: models.RoleTeamLeader})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestMoveRejectsOtherEmployee(t *testing.T) {
	task := models.Task{ID: "t1", AssignedTo: "e1", Status: models.TaskInProgress}

	changed, err := Move(&task, models.TaskCompleted, models.Actor{ID: "e2", Role: models.RoleEmployee})
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.False(t, changed)
	assert.Equal(t, models.TaskInProgress, task.Status)
}

func TestMoveRejectsUnknownStatus(t *testing.T) {
	task := models.Task{ID: "t1", AssignedTo: "e1", Status: models.TaskNew}
	_, err := Move(&task, "ARCHIVED", models.Actor{ID: "a", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, models.ErrInvalid)
	assert.Equal(t, models.TaskNew, task.Status)
}

func TestFilterVisible(t *testing.T) {
	admin := models.Actor{ID: "e1", Role: models.RoleAdmin, DepartmentID: "civil"}
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, ids(FilterVisible(pool(), admin, models.ViewTeam)))
	assert.Equal(t, []string{"t1", "t3"}, ids(FilterVisible(pool(), admin, models.ViewPersonal)))

	lead := models.Actor{ID: "e2", Role: models.RoleTeamLeader, DepartmentID: "civil"}
	assert.Equal(t, []string{"t1", "t2"}, ids(FilterVisible(pool(), lead, models.ViewTeam)))
	assert.Equal(t, []string{"t2"}, ids(FilterVisible(pool(), lead, models.ViewPersonal)))

	emp := models.Actor{ID: "e1", Role: models.RoleEmployee, DepartmentID: "civil"}
	assert.Equal(t, []string{"t1"}, ids(FilterVisible(pool(), emp, models.ViewPersonal)))
}

func TestFilterPersonalOnlyOwnCards(t *testing.T) {
	roles := []models.Role{models.RoleAdmin, models.RoleDeptManager, models.RoleTeamLeader, models.RoleEmployee}
	for _, role := range roles {
		for _, dept := range []string{"civil", "arch"} {
			actor := models.Actor{ID: "e1", Role: role, DepartmentID: dept}
			for _, task := range FilterVisible(pool(), actor, models.ViewPersonal) {
				assert.Equal(t, "e1", task.AssignedTo, "%s/%s", role, dept)
			}
		}
	}
}

func TestColumns(t *testing.T) {
	cols := Columns(pool())
	require.Len(t, cols, len(models.TaskStatuses))
	assert.Equal(t, models.TaskNew, cols[0].Status)
	assert.Equal(t, 2, cols[0].Count)
	assert.Equal(t, 0, cols[1].Count)
	assert.NotNil(t, cols[1].Tasks)
	assert.Equal(t, 1, cols[4].Count)
}

func TestProgress(t *testing.T) {
	project := models.Project{ID: "p1", Progress: 42}
	tasks := []models.Task{
		{ProjectID: "p1", Weight: 10, Status: models.TaskCompleted},
		{ProjectID: "p1", Weight: 10, Status: models.TaskReview},
		{ProjectID: "p1", Weight: 10, Status: models.TaskNew},
		{ProjectID: "p2", Weight: 50, Status: models.TaskCompleted},
		{Weight: 50, Status: models.TaskCompleted},
	}
	assert.Equal(t, 33, Progress(project, tasks))
	assert.Equal(t, 42, Progress(project, nil))
	assert.Equal(t, 42, Progress(project, []models.Task{{ProjectID: "p1", Weight: 0}}))

	tasks[1].Status = models.TaskCompleted
	assert.Equal(t, 67, Progress(project, tasks))
}

func TestFanout(t *testing.T) {
	dir := directory{
		"e1": {ID: "e1", DepartmentID: "civil"},
		"e2": {ID: "e2"},
	}
	form := Assignment{
		Title:       "  Structural review ",
		ProjectID:   "p1",
		DueDate:     "2024-06-01",
		KPIPoints:   5,
		Attachments: []models.Attachment{{ID: "a1", Name: "plan.pdf", Provider: "cloud"}},
	}

	tasks, err := Fanout(form, []string{"e1", "e2", "e9", "e1"}, dir, sequence("task"))
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, []string{"task-1", "task-2", "task-3"}, ids(tasks))
	assert.Equal(t, "civil", tasks[0].DepartmentID)
	assert.Equal(t, FallbackDepartment, tasks[1].DepartmentID)
	assert.Equal(t, FallbackDepartment, tasks[2].DepartmentID)
	for _, task := range tasks {
		assert.Equal(t, "Structural review", task.Title)
		assert.Equal(t, models.TaskNew, task.Status)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		assert.Equal(t, DefaultWeight, task.Weight)
		assert.Len(t, task.Attachments, 1)
	}

	tasks[0].Attachments[0].Name = "changed"
	assert.Equal(t, "plan.pdf", tasks[1].Attachments[0].Name)
}

func TestFanoutValidation(t *testing.T) {
	dir := directory{}
	_, err := Fanout(Assignment{Title: ""}, []string{"e1"}, dir, sequence("t"))
	assert.ErrorIs(t, err, models.ErrInvalid)

	_, err = Fanout(Assignment{Title: "x"}, nil, dir, sequence("t"))
	assert.ErrorIs(t, err, models.ErrInvalid)

	_, err = Fanout(Assignment{Title: "x"}, []string{"  "}, dir, sequence("t"))
	assert.ErrorIs(t, err, models.ErrInvalid)

	neg := -1
	_, err = Fanout(Assignment{Title: "x", Weight: &neg}, []string{"e1"}, dir, sequence("t"))
	assert.ErrorIs(t, err, models.ErrInvalid)

	_, err = Fanout(Assignment{Title: "x", Priority: "URGENT"}, []string{"e1"}, dir, sequence("t"))
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestApplyEdit(t *testing.T) {
	task := models.Task{ID: "t1", Title: "a", AssignedTo: "e1", Status: models.TaskNew, Weight: 10}
	owner := models.Actor{ID: "e1", Role: models.RoleEmployee}
	leader := models.Actor{ID: "l1", Role: models.RoleTeamLeader}

	title, hours, status := "Revised", 6.5, models.TaskReview
	require.NoError(t, ApplyEdit(&task, Patch{Title: &title, ActualHours: &hours, Status: &status}, owner))
	assert.Equal(t, "Revised", task.Title)
	assert.Equal(t, 6.5, task.ActualHours)
	assert.Equal(t, models.TaskReview, task.Status)

	neg := -3
	err := ApplyEdit(&task, Patch{Title: &title, Weight: &neg}, leader)
	assert.ErrorIs(t, err, models.ErrInvalid)
	assert.Equal(t, 10, task.Weight)

	other := models.Actor{ID: "e2", Role: models.RoleEmployee}
	assert.ErrorIs(t, ApplyEdit(&task, Patch{Title: &title}, other), models.ErrForbidden)
}

func TestApplyEditManagedFields(t *testing.T) {
	owner := models.Actor{ID: "e1", Role: models.RoleEmployee, DepartmentID: "civil"}
	leader := models.Actor{ID: "l1", Role: models.RoleTeamLeader, DepartmentID: "civil"}
	kpi, weight, assignee, dept := 999, 50, "e2", "arch"

	patches := map[string]Patch{
		"kpi_points":    {KPIPoints: &kpi},
		"weight":        {Weight: &weight},
		"assigned_to":   {AssignedTo: &assignee},
		"department_id": {DepartmentID: &dept},
	}
	for field, p := range patches {
		task := models.Task{ID: "t1", Title: "a", AssignedTo: "e1", DepartmentID: "civil", KPIPoints: 5, Weight: 10}
		err := ApplyEdit(&task, p, owner)
		require.ErrorIs(t, err, models.ErrForbidden, field)
		assert.Contains(t, err.Error(), field)
		assert.Equal(t, 5, task.KPIPoints, field)
		assert.Equal(t, 10, task.Weight, field)
		assert.Equal(t, "e1", task.AssignedTo, field)
		assert.Equal(t, "civil", task.DepartmentID, field)

		assert.NoError(t, ApplyEdit(&task, p, leader), field)
	}
}

func TestAddComment(t *testing.T) {
	author := models.Actor{ID: "e1", Role: models.RoleEmployee, DepartmentID: "civil"}
	task := models.Task{ID: "t1", DepartmentID: "civil"}
	require.NoError(t, AddComment(&task, models.Comment{ID: "c1", Text: " looks good "}, author))
	assert.Equal(t, "looks good", task.Comments[0].Text)
	assert.ErrorIs(t, AddComment(&task, models.Comment{ID: "c2", Text: " "}, author), models.ErrInvalid)
	assert.Len(t, task.Comments, 1)
}

func TestAddCommentNeedsVisibleCard(t *testing.T) {
	task := models.Task{ID: "t1", DepartmentID: "arch"}

	mep := models.Actor{ID: "e7", Role: models.RoleEmployee, DepartmentID: "mep"}
	assert.ErrorIs(t, AddComment(&task, models.Comment{ID: "c1", Text: "hello"}, mep), models.ErrForbidden)
	assert.Empty(t, task.Comments)

	admin := models.Actor{ID: "a1", Role: models.RoleAdmin, DepartmentID: "mep"}
	assert.NoError(t, AddComment(&task, models.Comment{ID: "c2", Text: "hello"}, admin))
	assert.Len(t, task.Comments, 1)
}

func TestVisible(t *testing.T) {
	task := models.Task{DepartmentID: "arch"}
	assert.True(t, Visible(task, models.Actor{Role: models.RoleEmployee, DepartmentID: "arch"}))
	assert.False(t, Visible(task, models.Actor{Role: models.RoleDeptManager, DepartmentID: "civil"}))
	assert.True(t, Visible(task, models.Actor{Role: models.RoleAdmin, DepartmentID: "civil"}))
}
