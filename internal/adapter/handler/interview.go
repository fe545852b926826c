package handler

import (
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hoangnam-dev/persona-interview/errors"
	interviewDTO "github.com/hoangnam-dev/persona-interview/internal/adapter/dto/interview"
	"github.com/hoangnam-dev/persona-interview/internal/adapter/presenter"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/domain/repositories"
	"github.com/hoangnam-dev/persona-interview/internal/usecase/analytics"
	sessionUsecase "github.com/hoangnam-dev/persona-interview/internal/usecase/session"
)

const (
	maxAudioFrameBytes = 1 << 20
	audioPullWait      = 5 * time.Second
)

// Interview handles interview session HTTP requests: record CRUD plus the
// live lifecycle (start, audio, status, stop, report).
type Interview struct {
	sessions repositories.InterviewSessionRepository
	personas repositories.PersonaRepository
	manager  *sessionUsecase.Manager
	logger   *zap.Logger
}

// NewInterviewHandler creates a new interview session handler
func NewInterviewHandler(
	sessions repositories.InterviewSessionRepository,
	personas repositories.PersonaRepository,
	manager *sessionUsecase.Manager,
	logger *zap.Logger,
) *Interview {
	return &Interview{
		sessions: sessions,
		personas: personas,
		manager:  manager,
		logger:   logger,
	}
}

// Create handles POST /sessions
func (h *Interview) Create(c echo.Context) error {
	var req interviewDTO.CreateSessionRequest
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
	personaID, err := uuid.Parse(req.PersonaID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("persona_id must be a valid UUID"))
	}

	p, err := h.personas.FindByID(c.Request().Context(), personaID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find persona", err))
	}
	if p == nil {
		return HandleError(h.logger, c, errors.ErrPersonaNotFound(personaID.String()))
	}
	if p.ProjectID != projectID {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("persona does not belong to project"))
	}

	record := entities.NewInterviewSession(projectID, personaID)
	if err := h.sessions.Create(c.Request().Context(), record); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("create session", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToSessionResponse(record))
}

// Get handles GET /sessions/:id
func (h *Interview) Get(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	record, err := h.sessions.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find session", err))
	}
	if record == nil {
		return HandleError(h.logger, c, errors.ErrSessionNotFound(id.String()))
	}
	return HandleSuccess(h.logger, c, presenter.ToSessionResponse(record))
}

// ListByProject handles GET /projects/:id/sessions
func (h *Interview) ListByProject(c echo.Context) error {
	projectID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	records, err := h.sessions.FindByProjectID(c.Request().Context(), projectID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list sessions", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToSessionListResponse(records))
}

// Start handles POST /sessions/:id/start. On success the response carries
// the short-lived transport credential and the selected voice profile.
func (h *Interview) Start(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.manager.Start(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, &interviewDTO.StartSessionResponse{
		SessionID:  id.String(),
		Credential: result.Credential,
		VoiceID:    result.VoiceID,
		State:      string(result.State),
	})
}

// Stop handles POST /sessions/:id/stop. The report document is returned
// even when the durable write failed; the error code tells the client a
// retry-persist is needed.
func (h *Interview) Stop(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.manager.Stop(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if report == nil {
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "stopped"})
	}
	return HandleSuccess(h.logger, c, report.Document())
}

// RetryPersist handles POST /sessions/:id/report/retry
func (h *Interview) RetryPersist(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.manager.RetryPersist(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report.Document())
}

// Status handles GET /sessions/:id/status
func (h *Interview) Status(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	status, err := h.manager.Status(id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, status)
}

// Report handles GET /sessions/:id/report
func (h *Interview) Report(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.manager.Report(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report.Document())
}

// Metrics handles GET /sessions/:id/metrics, computing interviewer
// analytics from the finished session's turn log.
func (h *Interview) Metrics(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.manager.Report(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, analytics.Compute(report.Turns, report.DurationMs))
}

// PushAudio handles POST /sessions/:id/audio. The body is one raw
// pcm_s16le microphone frame.
func (h *Interview) PushAudio(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	frame, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAudioFrameBytes))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if len(frame) == 0 {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("audio frame is empty"))
	}

	if err := h.manager.PushAudio(id, frame); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "accepted"})
}

// PullAudio handles GET /sessions/:id/audio, long-polling for the next
// persona audio chunk.
func (h *Interview) PullAudio(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	chunk, ok, err := h.manager.PullAudio(c.Request().Context(), id, audioPullWait)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return HandleSuccess(h.logger, c, &interviewDTO.AudioChunkResponse{
		AudioB64: base64.StdEncoding.EncodeToString(chunk.Data),
		Encoding: chunk.Encoding,
	})
}
