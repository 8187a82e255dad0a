package service

import (
	"context"
	"strings"
	"time"

	"tasktracker/internal/access"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/cache"
	"tasktracker/internal/lifecycle"
	"tasktracker/internal/models"
	"tasktracker/internal/repository"
	"tasktracker/internal/validation"
	"tasktracker/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTaskInput struct {
	Title       string              `json:"title" validate:"required,min=3,max=200"`
	Description string              `json:"description" validate:"max=2000"`
	Status      models.TaskStatus   `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *models.Date        `json:"dueDate"`
	AssignedTo  *string             `json:"assignedTo" validate:"omitempty,uuid"`
}

type TaskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	cache  cache.Cache
	events Notifier
	now    func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, c cache.Cache, events Notifier) *TaskService {
	if c == nil {
		c = cache.Nop{}
	}
	if events == nil {
		events = NopNotifier{}
	}
	return &TaskService{tasks: tasks, users: users, cache: c, events: events, now: utcNow}
}

// List returns the tasks matching filter. Non-admins only ever see tasks they
// created or are assigned to.
func (s *TaskService) List(ctx context.Context, actor access.Actor, filter models.TaskFilter, sort models.TaskSort) ([]models.Task, error) {
	if !actor.IsAdmin() {
		filter.VisibleTo = actor.ID
	}
	return s.tasks.List(ctx, filter, sort)
}

// Get returns a task the actor may see. Tasks outside the actor's scope are
// reported as not found.
func (s *TaskService) Get(ctx context.Context, actor access.Actor, id string) (models.Task, error) {
	var task models.Task
	if !s.cache.Get(ctx, cache.TaskKey(id), &task) {
		var err error
		task, err = s.tasks.GetByID(ctx, id)
		if err != nil {
			return models.Task{}, err
		}
		s.cache.Set(ctx, cache.TaskKey(id), task)
	}
	if !access.CanView(task, actor) {
		return models.Task{}, apperrors.NotFound("Task not found")
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, actorID string, in CreateTaskInput) (models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return models.Task{}, err
	}

	now := s.now()
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if in.DueDate != nil {
		due := in.DueDate.Time
		task.DueDate = &due
	}
	if in.AssignedTo != nil {
		if id := strings.TrimSpace(*in.AssignedTo); id != "" {
			if err := s.resolveAssignee(ctx, id); err != nil {
				return models.Task{}, err
			}
			task.AssignedTo = &id
		}
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return models.Task{}, err
	}
	logger.AuditLogger.Info("Task created", zap.String("task_id", created.ID), zap.String("user_id", actorID))
	s.publish(models.EventTaskCreated, actorID, created)
	return created, nil
}

// Update applies a partial update. The policy runs before the changes are
// validated or the assignee is resolved.
func (s *TaskService) Update(ctx context.Context, actor access.Actor, id string, changes lifecycle.Changes) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := access.CanModify(task, actor, access.OpUpdate); err != nil {
		s.denied(actor, access.OpUpdate, task.ID)
		return models.Task{}, err
	}
	if err := lifecycle.Validate(changes); err != nil {
		return models.Task{}, err
	}
	if assignee, ok := changes.AssigneeToResolve(); ok {
		if err := s.resolveAssignee(ctx, assignee); err != nil {
			return models.Task{}, err
		}
	}

	saved, err := s.tasks.Update(ctx, lifecycle.ApplyUpdate(task, changes, s.now()))
	if err != nil {
		return models.Task{}, err
	}
	s.cache.Delete(ctx, cache.TaskKey(id))
	logger.AuditLogger.Info("Task updated", zap.String("task_id", id), zap.String("user_id", actor.ID))
	s.publish(models.EventTaskUpdated, actor.ID, saved, task)
	return saved, nil
}

func (s *TaskService) Delete(ctx context.Context, actor access.Actor, id string) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanModify(task, actor, access.OpDelete); err != nil {
		s.denied(actor, access.OpDelete, task.ID)
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(ctx, cache.TaskKey(id))
	logger.AuditLogger.Info("Task deleted", zap.String("task_id", id), zap.String("user_id", actor.ID))
	s.publish(models.EventTaskDeleted, actor.ID, task)
	return nil
}

func (s *TaskService) ToggleCompletion(ctx context.Context, actor access.Actor, id string) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := access.CanModify(task, actor, access.OpToggleComplete); err != nil {
		s.denied(actor, access.OpToggleComplete, task.ID)
		return models.Task{}, err
	}
	saved, err := s.tasks.Update(ctx, lifecycle.Toggle(task, s.now()))
	if err != nil {
		return models.Task{}, err
	}
	s.cache.Delete(ctx, cache.TaskKey(id))
	logger.AuditLogger.Info("Task completion toggled",
		zap.String("task_id", id), zap.String("user_id", actor.ID), zap.Bool("is_completed", saved.IsCompleted))
	s.publish(models.EventTaskToggled, actor.ID, saved)
	return saved, nil
}

// Stats counts tasks in a scope. Admins get every task, or one user's scope
// when userID is given. Everyone else gets their own scope.
func (s *TaskService) Stats(ctx context.Context, actor access.Actor, userID string) (models.TaskStats, error) {
	scope := userID
	switch {
	case actor.IsAdmin():
		if userID != "" {
			ok, err := s.users.Exists(ctx, userID)
			if err != nil {
				return models.TaskStats{}, err
			}
			if !ok {
				return models.TaskStats{}, apperrors.NotFound("User not found")
			}
		}
	case userID == "" || userID == actor.ID:
		scope = actor.ID
	default:
		return models.TaskStats{}, apperrors.Forbidden("Not authorized to view statistics for another user")
	}

	completed := true
	pending := models.StatusPending
	inProgress := models.StatusInProgress

	var stats models.TaskStats
	counts := []struct {
		dst    *int
		filter models.TaskFilter
	}{
		{&stats.Total, models.TaskFilter{VisibleTo: scope}},
		{&stats.Completed, models.TaskFilter{VisibleTo: scope, IsCompleted: &completed}},
		{&stats.Pending, models.TaskFilter{VisibleTo: scope, Status: &pending}},
		{&stats.InProgress, models.TaskFilter{VisibleTo: scope, Status: &inProgress}},
	}
	for _, c := range counts {
		n, err := s.tasks.Count(ctx, c.filter)
		if err != nil {
			return models.TaskStats{}, err
		}
		*c.dst = n
	}
	return stats, nil
}

func (s *TaskService) resolveAssignee(ctx context.Context, id string) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Reference("Assigned user not found")
	}
	return nil
}

func (s *TaskService) denied(actor access.Actor, op access.Operation, taskID string) {
	logger.SecurityLogger.Warn("Task operation denied",
		zap.String("operation", string(op)),
		zap.String("task_id", taskID),
		zap.String("user_id", actor.ID),
		zap.String("role", string(actor.Role)),
	)
}

// publish announces a change. versions holds the task after the change,
// followed by earlier versions whose people should also hear about it.
func (s *TaskService) publish(eventType, actorID string, versions ...models.Task) {
	current := versions[0]
	event := models.TaskEvent{
		Type:     eventType,
		TaskID:   current.ID,
		ActorID:  actorID,
		At:       s.now(),
		Audience: audienceOf(versions...),
	}
	if eventType != models.EventTaskDeleted {
		event.Task = &current
	}
	s.events.Notify(event)
}
