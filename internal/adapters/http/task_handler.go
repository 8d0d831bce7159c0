package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskboard/core/internal/application/services"
	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// TaskQueryRequest is the body of the task query endpoint: a filter
// specification plus optional search text and sort keys applied to the
// returned page.
type TaskQueryRequest struct {
	ports.TaskListFilter
	Search   string          `json:"search"`
	SortKeys []ports.SortKey `json:"sort_keys"`
}

// QueryTasks runs the filter engine and applies search and sort to the page.
func (h *TaskHandler) QueryTasks(c echo.Context) error {
	var req TaskQueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.taskService.ListTasks(c.Request().Context(), req.TaskListFilter)
	if err != nil {
		return mapError(err)
	}

	result.Tasks = services.SortAndSearch(result.Tasks, req.SortKeys, req.Search)
	return c.JSON(http.StatusOK, result)
}

// GetTask handles getting a task by ID
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	if task == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, task)
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

// UpdateTask handles partial task updates
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.taskService.UpdateTask(c.Request().Context(), id, req); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task updated"})
}

// ArchiveTask handles archiving a task
func (h *TaskHandler) ArchiveTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	if err := h.taskService.ArchiveTask(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task archived"})
}

// UnarchiveTask handles restoring a task to the active partition
func (h *TaskHandler) UnarchiveTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	if err := h.taskService.UnarchiveTask(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task unarchived"})
}

// DeleteTask handles permanent task deletion
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	if err := h.taskService.RemoveTask(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}

// mapError translates domain errors into HTTP errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, entities.ErrNotAuthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, entities.ErrNotAuthorized):
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized")
	case errors.Is(err, entities.ErrAllowlistNotConfigured):
		return echo.NewHTTPError(http.StatusInternalServerError, "Server is not configured")
	case errors.Is(err, entities.ErrInUse):
		return echo.NewHTTPError(http.StatusConflict, "Entity is referenced by existing tasks")
	case errors.Is(err, entities.ErrTitleRequired):
		return echo.NewHTTPError(http.StatusBadRequest, "Title is required")
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrProjectNotFound),
		errors.Is(err, entities.ErrStateNotFound),
		errors.Is(err, entities.ErrPriorityNotFound),
		errors.Is(err, entities.ErrTagNotFound),
		errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrTaskUpdateNotFound),
		errors.Is(err, entities.ErrPresetNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return err
	}
}
