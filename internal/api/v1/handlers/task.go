package handlers

import (
	"errors"
	"strconv"
	"strings"

	"tasktracker/internal/api/response"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/lifecycle"
	"tasktracker/internal/models"
	"tasktracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req service.CreateTaskInput
	if err := parseBody(c, &req, "create task"); err != nil {
		return response.Error(c, err)
	}
	task, err := h.tasks.Create(c.UserContext(), actor(c).ID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusCreated, "Task created successfully", task)
}

// ListTasks supports status, priority, isCompleted, assignedTo, createdBy and
// search filters plus sortBy / order.
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	filter, sort, err := parseTaskQuery(c)
	if err != nil {
		return response.Error(c, err)
	}
	tasks, err := h.tasks.List(c.UserContext(), actor(c), filter, sort)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, "Tasks fetched successfully", tasks)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	task, err := h.tasks.Get(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Task found", task)
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	var changes lifecycle.Changes
	if err := parseBody(c, &changes, "update task"); err != nil {
		return response.Error(c, err)
	}
	task, err := h.tasks.Update(c.UserContext(), actor(c), c.Params("id"), changes)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	if err := h.tasks.Delete(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Task deleted successfully", nil)
}

func (h *TaskHandler) ToggleTask(c *fiber.Ctx) error {
	task, err := h.tasks.ToggleCompletion(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	message := "Task marked as incomplete"
	if task.IsCompleted {
		message = "Task marked as completed"
	}
	return response.Success(c, fiber.StatusOK, message, task)
}

func (h *TaskHandler) TaskStats(c *fiber.Ctx) error {
	stats, err := h.tasks.Stats(c.UserContext(), actor(c), strings.TrimSpace(c.Query("userId")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Task statistics fetched successfully", stats)
}

func parseTaskQuery(c *fiber.Ctx) (models.TaskFilter, models.TaskSort, error) {
	var fields []apperrors.FieldError
	filter := models.TaskFilter{Search: strings.TrimSpace(c.Query("search"))}

	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		if !status.Valid() {
			fields = append(fields, apperrors.FieldError{Field: "status", Message: "Status must be pending, in-progress, or completed"})
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		if !priority.Valid() {
			fields = append(fields, apperrors.FieldError{Field: "priority", Message: "Priority must be low, medium, or high"})
		}
		filter.Priority = &priority
	}
	if v := c.Query("isCompleted"); v != "" {
		done, err := strconv.ParseBool(v)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: "isCompleted", Message: "isCompleted must be true or false"})
		}
		filter.IsCompleted = &done
	}
	if v := strings.TrimSpace(c.Query("assignedTo")); v != "" {
		filter.AssignedTo = &v
	}
	if v := strings.TrimSpace(c.Query("createdBy")); v != "" {
		filter.CreatedBy = &v
	}

	sort, err := models.ParseTaskSort(c.Query("sortBy"), c.Query("order"))
	if err != nil {
		field := "sortBy"
		var perr *models.SortParamError
		if errors.As(err, &perr) {
			field = perr.Param
		}
		fields = append(fields, apperrors.FieldError{Field: field, Message: err.Error()})
	}

	if len(fields) > 0 {
		return models.TaskFilter{}, models.TaskSort{}, &apperrors.ValidationError{Fields: fields}
	}
	return filter, sort, nil
}
