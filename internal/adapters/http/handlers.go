package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskboard/core/internal/application/services"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

// IDResponse carries the id of a newly created entity.
type IDResponse struct {
	ID uuid.UUID `json:"id"`
}

// MessageResponse is a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// TagHandler handles tag requests
type TagHandler struct {
	tagService *services.TagService
	logger     *logger.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService *services.TagService, logger *logger.Logger) *TagHandler {
	return &TagHandler{tagService: tagService, logger: logger}
}

func (h *TagHandler) ListTags(c echo.Context) error {
	tags, err := h.tagService.ListTags(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) CreateTag(c echo.Context) error {
	var req ports.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.tagService.CreateTag(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *TagHandler) UpdateTag(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tag ID")
	}

	var req ports.UpdateTagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.tagService.UpdateTag(c.Request().Context(), id, req); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Tag updated"})
}

func (h *TagHandler) DeleteTag(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid tag ID")
	}
	if err := h.tagService.RemoveTag(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Tag deleted"})
}

// ProjectHandler handles project requests
type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *logger.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *services.ProjectService, logger *logger.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, logger: logger}
}

func (h *ProjectHandler) ListProjects(c echo.Context) error {
	archived := c.QueryParam("archived") == "true"
	projects, err := h.projectService.ListProjects(c.Request().Context(), archived)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid project ID")
	}

	project, err := h.projectService.GetProject(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	if project == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}
	return c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) CreateProject(c echo.Context) error {
	var req ports.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.projectService.CreateProject(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid project ID")
	}

	var req ports.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.projectService.UpdateProject(c.Request().Context(), id, req); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Project updated"})
}

func (h *ProjectHandler) ArchiveProject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid project ID")
	}
	if err := h.projectService.ArchiveProject(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Project archived"})
}

func (h *ProjectHandler) UnarchiveProject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid project ID")
	}
	if err := h.projectService.UnarchiveProject(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Project unarchived"})
}

// UpdateHandler handles task comment requests
type UpdateHandler struct {
	updateService *services.UpdateService
	logger        *logger.Logger
}

// NewUpdateHandler creates a new task comment handler
func NewUpdateHandler(updateService *services.UpdateService, logger *logger.Logger) *UpdateHandler {
	return &UpdateHandler{updateService: updateService, logger: logger}
}

func (h *UpdateHandler) ListForTask(c echo.Context) error {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	updates, err := h.updateService.ListForTask(c.Request().Context(), taskID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, updates)
}

func (h *UpdateHandler) CreateUpdate(c echo.Context) error {
	var req ports.CreateUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.updateService.CreateUpdate(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *UpdateHandler) DeleteUpdate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid update ID")
	}
	if err := h.updateService.RemoveUpdate(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Update deleted"})
}

// PresetHandler handles filter preset requests
type PresetHandler struct {
	presetService *services.PresetService
	logger        *logger.Logger
}

// NewPresetHandler creates a new preset handler
func NewPresetHandler(presetService *services.PresetService, logger *logger.Logger) *PresetHandler {
	return &PresetHandler{presetService: presetService, logger: logger}
}

func (h *PresetHandler) ListPresets(c echo.Context) error {
	presets, err := h.presetService.ListPresets(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, presets)
}

func (h *PresetHandler) CreatePreset(c echo.Context) error {
	var req ports.CreatePresetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.presetService.CreatePreset(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *PresetHandler) UpdatePreset(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid preset ID")
	}

	var req ports.UpdatePresetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.presetService.UpdatePreset(c.Request().Context(), id, req); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Preset updated"})
}

func (h *PresetHandler) DeletePreset(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid preset ID")
	}
	if err := h.presetService.RemovePreset(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Preset deleted"})
}

// UserHandler handles user requests
type UserHandler struct {
	userService *services.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	user, err := h.userService.CurrentUser(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized")
	}
	return c.JSON(http.StatusOK, user)
}

// AuditHandler handles audit log requests
type AuditHandler struct {
	auditService *services.AuditService
	logger       *logger.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService, logger *logger.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, logger: logger}
}

func (h *AuditHandler) ListEntries(c echo.Context) error {
	entityType := c.QueryParam("entity_type")
	entries, err := h.auditService.List(c.Request().Context(), entityType)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *AuditHandler) ListForEntity(c echo.Context) error {
	entityType := c.Param("type")
	entityID := c.Param("id")
	entries, err := h.auditService.ListForEntity(c.Request().Context(), entityType, entityID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, entries)
}
