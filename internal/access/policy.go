// Package access decides whether an actor may change a task.
package access

import (
	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"
)

type Operation string

const (
	OpUpdate         Operation = "update"
	OpToggleComplete Operation = "toggle-complete"
	OpDelete         Operation = "delete"
)

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

type rule struct {
	creator  bool
	assignee bool
	denial   string
}

// Admins may perform every operation listed here.
var rules = map[Operation]rule{
	OpUpdate: {
		creator:  true,
		assignee: true,
		denial:   "Not authorized to update this task",
	},
	OpToggleComplete: {
		creator:  true,
		assignee: true,
		denial:   "Not authorized to update this task. Only the creator, assignee, or admin can change task status.",
	},
	OpDelete: {
		creator: true,
		denial:  "Not authorized to delete this task. Only the task creator or admin can delete tasks.",
	},
}

// CanModify returns nil when actor may perform op on task, and an error
// wrapping apperrors.ErrForbidden otherwise. Unknown operations are denied.
func CanModify(task models.Task, actor Actor, op Operation) error {
	r, ok := rules[op]
	if !ok {
		return apperrors.Forbidden("Operation %q is not permitted", op)
	}
	switch {
	case actor.IsAdmin():
		return nil
	case r.creator && actor.ID != "" && task.CreatedBy == actor.ID:
		return nil
	case r.assignee && actor.ID != "" && task.IsAssignedTo(actor.ID):
		return nil
	}
	return apperrors.Forbidden("%s", r.denial)
}

// CanView is the scope predicate for reads: admins see everything, other users
// see the tasks they created or are assigned to.
func CanView(task models.Task, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && (task.CreatedBy == actor.ID || task.IsAssignedTo(actor.ID))
}
