package handler

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/hoangnam-dev/persona-interview/errors"
	projectDTO "github.com/hoangnam-dev/persona-interview/internal/adapter/dto/project"
	"github.com/hoangnam-dev/persona-interview/internal/adapter/presenter"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/domain/repositories"
)

// Project handles research project HTTP requests
type Project struct {
	projects repositories.ProjectRepository
	logger   *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects repositories.ProjectRepository, logger *zap.Logger) *Project {
	return &Project{projects: projects, logger: logger}
}

// Create handles POST /projects
func (h *Project) Create(c echo.Context) error {
	var req projectDTO.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	p := entities.NewProject(req.Name, req.Goal)
	p.Audience = req.Audience
	if req.Settings != nil {
		raw, err := json.Marshal(req.Settings)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("settings must be a JSON object"))
		}
		p.Settings = datatypes.JSON(raw)
	}

	if err := h.projects.Create(c.Request().Context(), p); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("create project", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToProjectResponse(p))
}

// Get handles GET /projects/:id
func (h *Project) Get(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	p, err := h.projects.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find project", err))
	}
	if p == nil {
		return HandleError(h.logger, c, errors.ErrProjectNotFound(id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToProjectResponse(p))
}

// List handles GET /projects
func (h *Project) List(c echo.Context) error {
	projects, err := h.projects.List(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list projects", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToProjectListResponse(projects))
}

// Update handles PUT /projects/:id
func (h *Project) Update(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req projectDTO.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	p, err := h.projects.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find project", err))
	}
	if p == nil {
		return HandleError(h.logger, c, errors.ErrProjectNotFound(id.String()))
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Goal != nil {
		p.Goal = *req.Goal
	}
	if req.Audience != nil {
		p.Audience = *req.Audience
	}
	if req.Settings != nil {
		raw, err := json.Marshal(req.Settings)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("settings must be a JSON object"))
		}
		p.Settings = datatypes.JSON(raw)
	}

	if err := h.projects.Update(c.Request().Context(), p); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("update project", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToProjectResponse(p))
}

// Archive handles DELETE /projects/:id
func (h *Project) Archive(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.projects.Archive(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("archive project", err))
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "archived"})
}
