package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskboard/core/internal/application/services"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

// WorkflowHandler handles task state and priority requests
type WorkflowHandler struct {
	workflowService *services.WorkflowService
	logger          *logger.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(workflowService *services.WorkflowService, logger *logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
		logger:          logger,
	}
}

// ReorderRequest carries the full id sequence for a reorder.
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// States

func (h *WorkflowHandler) ListStates(c echo.Context) error {
	states, err := h.workflowService.ListStates(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, states)
}

func (h *WorkflowHandler) CreateState(c echo.Context) error {
	var req ports.CreateLookupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.workflowService.CreateState(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *WorkflowHandler) UpdateState(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid state ID")
	}

	var req ports.UpdateLookupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.workflowService.UpdateState(c.Request().Context(), id, req); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "State updated"})
}

func (h *WorkflowHandler) DeleteState(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid state ID")
	}
	if err := h.workflowService.RemoveState(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "State deleted"})
}

func (h *WorkflowHandler) ReorderStates(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.workflowService.ReorderStates(c.Request().Context(), req.IDs); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "States reordered"})
}

// Priorities

func (h *WorkflowHandler) ListPriorities(c echo.Context) error {
	priorities, err := h.workflowService.ListPriorities(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, priorities)
}

func (h *WorkflowHandler) CreatePriority(c echo.Context) error {
	var req ports.CreateLookupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.workflowService.CreatePriority(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *WorkflowHandler) UpdatePriority(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid priority ID")
	}

	var req ports.UpdateLookupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.workflowService.UpdatePriority(c.Request().Context(), id, req); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Priority updated"})
}

func (h *WorkflowHandler) DeletePriority(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid priority ID")
	}
	if err := h.workflowService.RemovePriority(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Priority deleted"})
}

func (h *WorkflowHandler) ReorderPriorities(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.workflowService.ReorderPriorities(c.Request().Context(), req.IDs); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Priorities reordered"})
}
