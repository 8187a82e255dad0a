package memory

import (
	"context"
	"time"

	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"
)

type TaskRepository struct {
	s *Store
}

func (r *TaskRepository) Create(_ context.Context, task models.Task) (models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkRefs(task); err != nil {
		return models.Task{}, err
	}
	task.Creator, task.Assignee = nil, nil
	r.s.tasks[task.ID] = task
	return r.s.withPeople(task), nil
}

func (r *TaskRepository) GetByID(_ context.Context, id string) (models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return models.Task{}, apperrors.NotFound("Task not found")
	}
	return r.s.withPeople(t), nil
}

func (r *TaskRepository) List(_ context.Context, filter models.TaskFilter, by models.TaskSort) ([]models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Task{}
	for _, t := range r.s.tasks {
		if matches(t, filter) {
			out = append(out, r.s.withPeople(t))
		}
	}
	sortTasks(out, by)
	return out, nil
}

func (r *TaskRepository) Count(_ context.Context, filter models.TaskFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, t := range r.s.tasks {
		if matches(t, filter) {
			n++
		}
	}
	return n, nil
}

func (r *TaskRepository) Update(_ context.Context, task models.Task) (models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.tasks[task.ID]
	if !ok {
		return models.Task{}, apperrors.NotFound("Task not found")
	}
	if err := r.checkRefs(task); err != nil {
		return models.Task{}, err
	}
	task.CreatedBy = current.CreatedBy
	task.CreatedAt = current.CreatedAt
	task.UpdatedAt = time.Now().UTC()
	task.Creator, task.Assignee = nil, nil
	r.s.tasks[task.ID] = task
	return r.s.withPeople(task), nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return apperrors.NotFound("Task not found")
	}
	delete(r.s.tasks, id)
	return nil
}

// checkRefs enforces the foreign keys the postgres schema declares.
func (r *TaskRepository) checkRefs(t models.Task) error {
	if _, ok := r.s.users[t.CreatedBy]; !ok {
		return apperrors.Reference("Referenced user not found")
	}
	if t.AssignedTo != nil {
		if _, ok := r.s.users[*t.AssignedTo]; !ok {
			return apperrors.Reference("Referenced user not found")
		}
	}
	return nil
}
