package access

import (
	"testing"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"

	"github.com/stretchr/testify/assert"
)

const (
	creatorID  = "u-creator"
	assigneeID = "u-assignee"
	strangerID = "u-stranger"
	adminID    = "u-admin"
)

func assignedTask() models.Task {
	assignee := assigneeID
	return models.Task{ID: "t-1", CreatedBy: creatorID, AssignedTo: &assignee}
}

func actors() map[string]Actor {
	return map[string]Actor{
		"creator":  {ID: creatorID, Role: models.RoleUser},
		"assignee": {ID: assigneeID, Role: models.RoleUser},
		"stranger": {ID: strangerID, Role: models.RoleUser},
		"admin":    {ID: adminID, Role: models.RoleAdmin},
	}
}

func TestCanModify_RuleTable(t *testing.T) {
	want := map[Operation]map[string]bool{
		OpUpdate:         {"creator": true, "assignee": true, "stranger": false, "admin": true},
		OpToggleComplete: {"creator": true, "assignee": true, "stranger": false, "admin": true},
		OpDelete:         {"creator": true, "assignee": false, "stranger": false, "admin": true},
	}
	task := assignedTask()

	for op, byActor := range want {
		for name, allowed := range byActor {
			t.Run(string(op)+"/"+name, func(t *testing.T) {
				err := CanModify(task, actors()[name], op)
				if allowed {
					assert.NoError(t, err)
					return
				}
				assert.ErrorIs(t, err, apperrors.ErrForbidden)
				assert.NotErrorIs(t, err, apperrors.ErrNotFound)
			})
		}
	}
}

func TestCanModify_DeleteExcludesAssignee(t *testing.T) {
	task := assignedTask()
	assignee := actors()["assignee"]

	assert.NoError(t, CanModify(task, assignee, OpUpdate))
	err := CanModify(task, assignee, OpDelete)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Contains(t, apperrors.PublicMessage(err, ""), "Only the task creator or admin")
}

func TestCanModify_UpdateAndToggleAgree(t *testing.T) {
	bob, carol := "bob", "carol"
	tasks := []models.Task{
		{CreatedBy: "alice"},
		{CreatedBy: "alice", AssignedTo: &bob},
		{CreatedBy: "bob", AssignedTo: &bob},
		{CreatedBy: "carol", AssignedTo: &carol},
	}
	people := []Actor{
		{ID: "alice", Role: models.RoleUser},
		{ID: "bob", Role: models.RoleUser},
		{ID: "carol", Role: models.RoleAdmin},
		{ID: "dave", Role: models.RoleUser},
		{ID: "", Role: models.RoleUser},
	}
	for _, task := range tasks {
		for _, actor := range people {
			update := CanModify(task, actor, OpUpdate) == nil
			toggle := CanModify(task, actor, OpToggleComplete) == nil
			assert.Equal(t, update, toggle, "task %+v actor %+v", task, actor)
		}
	}
}

func TestCanModify_DeleteIffCreatorOrAdmin(t *testing.T) {
	bob := "bob"
	tasks := []models.Task{{CreatedBy: "alice"}, {CreatedBy: "alice", AssignedTo: &bob}}
	people := []Actor{
		{ID: "alice", Role: models.RoleUser},
		{ID: "bob", Role: models.RoleUser},
		{ID: "root", Role: models.RoleAdmin},
		{ID: "eve", Role: models.RoleUser},
	}
	for _, task := range tasks {
		for _, actor := range people {
			allowed := CanModify(task, actor, OpDelete) == nil
			assert.Equal(t, actor.ID == task.CreatedBy || actor.IsAdmin(), allowed, "task %+v actor %+v", task, actor)
		}
	}
}

func TestCanModify_UnassignedTaskEmptyActorID(t *testing.T) {
	// an unassigned task must not match an actor with no id
	task := models.Task{CreatedBy: "alice"}
	assert.ErrorIs(t, CanModify(task, Actor{}, OpUpdate), apperrors.ErrForbidden)
}

func TestCanModify_UnknownOperationDenied(t *testing.T) {
	err := CanModify(assignedTask(), actors()["admin"], Operation("archive"))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCanView(t *testing.T) {
	task := assignedTask()
	a := actors()
	assert.True(t, CanView(task, a["creator"]))
	assert.True(t, CanView(task, a["assignee"]))
	assert.True(t, CanView(task, a["admin"]))
	assert.False(t, CanView(task, a["stranger"]))
}
