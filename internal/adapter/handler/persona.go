package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hoangnam-dev/persona-interview/errors"
	personaDTO "github.com/hoangnam-dev/persona-interview/internal/adapter/dto/persona"
	"github.com/hoangnam-dev/persona-interview/internal/adapter/presenter"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/domain/repositories"
)

// Persona handles persona HTTP requests
type Persona struct {
	personas repositories.PersonaRepository
	projects repositories.ProjectRepository
	logger   *zap.Logger
}

// NewPersonaHandler creates a new persona handler
func NewPersonaHandler(personas repositories.PersonaRepository, projects repositories.ProjectRepository, logger *zap.Logger) *Persona {
	return &Persona{personas: personas, projects: projects, logger: logger}
}

// Create handles POST /personas
func (h *Persona) Create(c echo.Context) error {
	var req personaDTO.CreatePersonaRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("project_id must be a valid UUID"))
	}

	project, err := h.projects.FindByID(c.Request().Context(), projectID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find project", err))
	}
	if project == nil {
		return HandleError(h.logger, c, errors.ErrProjectNotFound(projectID.String()))
	}

	p := entities.NewPersona(projectID, req.Name)
	p.Age = req.Age
	p.Gender = req.Gender
	p.Occupation = req.Occupation
	p.Personality = req.Personality
	p.TechComfort = req.TechComfort
	p.PainPoints = req.PainPoints
	p.Traits = req.Traits
	p.Notes = req.Notes

	if err := h.personas.Create(c.Request().Context(), p); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("create persona", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToPersonaResponse(p))
}

// Get handles GET /personas/:id
func (h *Persona) Get(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	p, err := h.personas.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find persona", err))
	}
	if p == nil {
		return HandleError(h.logger, c, errors.ErrPersonaNotFound(id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToPersonaResponse(p))
}

// ListByProject handles GET /projects/:id/personas
func (h *Persona) ListByProject(c echo.Context) error {
	projectID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	personas, err := h.personas.FindByProjectID(c.Request().Context(), projectID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list personas", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToPersonaListResponse(personas))
}

// Update handles PUT /personas/:id
func (h *Persona) Update(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req personaDTO.UpdatePersonaRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	p, err := h.personas.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find persona", err))
	}
	if p == nil {
		return HandleError(h.logger, c, errors.ErrPersonaNotFound(id.String()))
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Age != nil {
		p.Age = req.Age
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Occupation != nil {
		p.Occupation = *req.Occupation
	}
	if req.Personality != nil {
		p.Personality = *req.Personality
	}
	if req.TechComfort != nil {
		p.TechComfort = *req.TechComfort
	}
	if req.PainPoints != nil {
		p.PainPoints = req.PainPoints
	}
	if req.Traits != nil {
		p.Traits = req.Traits
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}

	if err := h.personas.Update(c.Request().Context(), p); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("update persona", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToPersonaResponse(p))
}

// Delete handles DELETE /personas/:id
func (h *Persona) Delete(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.personas.Delete(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("delete persona", err))
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "deleted"})
}
