package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/hoangnam-dev/persona-interview/errors"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/domain/repositories"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/cache"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/external/realtime"
	"github.com/hoangnam-dev/persona-interview/internal/usecase/coach"
	"github.com/hoangnam-dev/persona-interview/pkg/config"
	"github.com/hoangnam-dev/persona-interview/pkg/token"
)

const reportCacheTTL = time.Hour

// Manager owns every live session in the process, keyed by session ID.
// At most one Live instance holds the transport and capture pair for a
// given logical session.
type Manager struct {
	sessions repositories.InterviewSessionRepository
	personas repositories.PersonaRepository
	projects repositories.ProjectRepository
	reports  repositories.ReportRepository

	transport realtime.Transport
	minter    *token.Minter
	guard     cache.ReplayGuard
	advisor   coach.Advisor

	reportCache *cache.MemoryStore
	cfg         config.SessionConfig
	logger      *zap.Logger

	mu   sync.Mutex
	live map[uuid.UUID]*Live
}

// NewManager creates a session manager
func NewManager(
	sessions repositories.InterviewSessionRepository,
	personas repositories.PersonaRepository,
	projects repositories.ProjectRepository,
	reports repositories.ReportRepository,
	transport realtime.Transport,
	minter *token.Minter,
	guard cache.ReplayGuard,
	advisor coach.Advisor,
	cfg config.SessionConfig,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		sessions:    sessions,
		personas:    personas,
		projects:    projects,
		reports:     reports,
		transport:   transport,
		minter:      minter,
		guard:       guard,
		advisor:     advisor,
		reportCache: cache.NewMemoryStore(cfg.ReportCacheSize),
		cfg:         cfg,
		logger:      logger,
		live:        make(map[uuid.UUID]*Live),
	}
}

// StartResult is returned to the client after a successful start
type StartResult struct {
	Credential string
	VoiceID    string
	State      State
	Source     *ChannelSource
	Player     *PacedPlayer
}

// Start brings a session live: resolve its backing record, persona and
// project, mint a short-lived transport credential, open the transport and
// begin capture. Starting an already live session is rejected.
func (m *Manager) Start(ctx context.Context, sessionID uuid.UUID) (*StartResult, error) {
	record, err := m.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if record == nil {
		return nil, apperrors.ErrSessionNotFound(sessionID.String())
	}

	// context is re-resolved on every start, never cached across sessions
	p, err := m.personas.FindByID(ctx, record.PersonaID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if p == nil {
		return nil, apperrors.ErrPersonaNotFound(record.PersonaID.String())
	}
	project, err := m.projects.FindByID(ctx, record.ProjectID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if project == nil {
		return nil, apperrors.ErrProjectNotFound(record.ProjectID.String())
	}

	l := m.obtain(sessionID, record.ProjectID, p)
	if err := l.beginStart(); err != nil {
		return nil, apperrors.ErrSessionAlreadyLive(sessionID.String())
	}

	credential, err := m.minter.Mint(sessionID, p.ID, l.knobs.VoiceProfileID)
	if err != nil {
		l.fail(err)
		_ = m.sessions.MarkFailed(ctx, sessionID, err.Error())
		return nil, apperrors.ErrTransportCredential(err)
	}

	source := NewChannelSource()
	player := NewPacedPlayer(0)
	if err := l.open(ctx, m.transport, credential, source, player); err != nil {
		_ = m.sessions.MarkFailed(ctx, sessionID, err.Error())
		return nil, apperrors.ErrTransportOpen(err)
	}

	if err := m.sessions.MarkStarted(ctx, sessionID, time.Now()); err != nil && m.logger != nil {
		m.logger.Warn("failed to record session start", zap.Error(err))
	}

	if m.logger != nil {
		m.logger.Info("🚀 Session started",
			zap.String("session_id", sessionID.String()),
			zap.String("persona", p.Name))
	}

	return &StartResult{
		Credential: credential,
		VoiceID:    l.knobs.VoiceProfileID,
		State:      l.State(),
		Source:     source,
		Player:     player,
	}, nil
}

// obtain returns the Live instance for a session, creating it on first use
func (m *Manager) obtain(sessionID, projectID uuid.UUID, p *entities.Persona) *Live {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.live[sessionID]; ok {
		return l
	}
	l := newLive(sessionID, projectID, p, m.cfg, m.advisor, m.logger)
	m.live[sessionID] = l
	return l
}

func (m *Manager) find(sessionID uuid.UUID) *Live {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live[sessionID]
}

// Stop finalizes a live session and persists its report. Repeated stops
// are no-ops returning the same report.
func (m *Manager) Stop(ctx context.Context, sessionID uuid.UUID) (*entities.SessionReport, error) {
	l := m.find(sessionID)
	if l == nil {
		return nil, apperrors.ErrSessionNotFound(sessionID.String())
	}

	report, err := l.Stop(ctx, m.reports)
	if err != nil {
		_ = m.sessions.MarkFailed(ctx, sessionID, err.Error())
		if report != nil {
			m.cacheReport(report)
		}
		return report, apperrors.ErrReportPersistFailed(sessionID.String(), err)
	}

	if report != nil {
		m.cacheReport(report)
		if err := m.sessions.MarkStopped(ctx, sessionID, time.UnixMilli(report.StoppedAt), entities.SessionStatusCompleted); err != nil && m.logger != nil {
			m.logger.Warn("failed to record session stop", zap.Error(err))
		}
	}
	_ = m.guard.Forget(ctx, sessionID.String())
	return report, nil
}

// RetryPersist re-attempts the durable write after a failed finalize
func (m *Manager) RetryPersist(ctx context.Context, sessionID uuid.UUID) (*entities.SessionReport, error) {
	l := m.find(sessionID)
	if l == nil {
		return nil, apperrors.ErrSessionNotFound(sessionID.String())
	}
	report, err := l.RetryPersist(ctx, m.reports)
	if err != nil {
		return report, apperrors.ErrReportPersistFailed(sessionID.String(), err)
	}
	if err := m.sessions.MarkStopped(ctx, sessionID, time.UnixMilli(report.StoppedAt), entities.SessionStatusCompleted); err != nil && m.logger != nil {
		m.logger.Warn("failed to record session stop", zap.Error(err))
	}
	return report, nil
}

// Webhook folds one out-of-band event into its session. Redelivered event
// IDs are dropped; events for unknown sessions change nothing.
func (m *Manager) Webhook(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	ev, err := DecodeWebhook(payload)
	if err != nil {
		return apperrors.ErrInvalidPayload()
	}

	// resolve the session before consuming the event id: an early delivery
	// must leave the id unseen so the provider's retry can still land
	l := m.find(sessionID)
	if l == nil {
		return nil
	}

	if id := webhookEventID(ev); id != "" {
		seen, err := m.guard.Seen(ctx, sessionID.String(), id)
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("replay guard unavailable, processing event anyway", zap.Error(err))
			}
		} else if seen {
			return nil
		}
	}

	l.ApplyWebhook(ev)
	return nil
}

func webhookEventID(ev WebhookEvent) string {
	switch e := ev.(type) {
	case WebhookTurnEvent:
		return e.ID
	case WebhookEmotionEvent:
		return e.ID
	case WebhookEndedEvent:
		return e.ID
	case WebhookUnknownEvent:
		return e.ID
	}
	return ""
}

// Status describes a session's live state for polling clients
type Status struct {
	State    State               `json:"state"`
	MicLevel float64             `json:"micLevel"`
	OutLevel float64             `json:"outLevel"`
	Turns    []entities.Turn     `json:"turns"`
	Tips     []entities.CoachTip `json:"tips,omitempty"`
	LastErr  string              `json:"lastError,omitempty"`
}

// Status reports the live state of a session
func (m *Manager) Status(sessionID uuid.UUID) (*Status, error) {
	l := m.find(sessionID)
	if l == nil {
		return nil, apperrors.ErrSessionNotFound(sessionID.String())
	}
	mic, out := l.Levels()
	s := &Status{
		State:    l.State(),
		MicLevel: mic,
		OutLevel: out,
		Turns:    l.Turns(),
		Tips:     l.Tips(),
	}
	if err := l.LastError(); err != nil {
		s.LastErr = err.Error()
	}
	return s, nil
}

// Report serves a finished session's report: bounded in-process cache
// first, then the live fallback snapshot, then the durable store. A store
// miss means "no report yet", not an error.
func (m *Manager) Report(ctx context.Context, sessionID uuid.UUID) (*entities.SessionReport, error) {
	if raw, ok := m.reportCache.Get(sessionID.String()); ok {
		var report entities.SessionReport
		if err := json.Unmarshal([]byte(raw), &report); err == nil {
			return &report, nil
		}
	}

	if l := m.find(sessionID); l != nil {
		if fallback := l.Fallback(); fallback != nil {
			return fallback, nil
		}
	}

	report, err := m.reports.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	if report == nil {
		return nil, apperrors.ErrReportNotFound(sessionID.String())
	}
	m.cacheReport(report)
	return report, nil
}

func (m *Manager) cacheReport(report *entities.SessionReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	m.reportCache.Set(report.SessionID.String(), string(raw), reportCacheTTL)
}

// PushAudio forwards one microphone frame into a live session
func (m *Manager) PushAudio(sessionID uuid.UUID, frame []byte) error {
	l := m.find(sessionID)
	if l == nil {
		return apperrors.ErrSessionNotFound(sessionID.String())
	}
	l.mu.Lock()
	state := l.state
	capt := l.capture
	l.mu.Unlock()
	if state != StateConnected {
		return apperrors.ErrSessionInvalidState(sessionID.String(), string(state), string(StateConnected))
	}
	if capt != nil {
		if src, ok := capt.source.(*ChannelSource); ok {
			src.Push(frame)
		}
	}
	return nil
}

// PullAudio waits up to wait for the next persona audio chunk. The second
// return is false when no chunk arrived in time.
func (m *Manager) PullAudio(ctx context.Context, sessionID uuid.UUID, wait time.Duration) (*OutChunk, bool, error) {
	l := m.find(sessionID)
	if l == nil {
		return nil, false, apperrors.ErrSessionNotFound(sessionID.String())
	}
	l.mu.Lock()
	playback := l.playback
	l.mu.Unlock()
	if playback == nil {
		return nil, false, apperrors.ErrSessionInvalidState(sessionID.String(), string(l.State()), string(StateConnected))
	}
	player, ok := playback.player.(*PacedPlayer)
	if !ok {
		return nil, false, nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case chunk, ok := <-player.Outbox():
		if !ok {
			return nil, false, nil
		}
		return &chunk, true, nil
	case <-timer.C:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Shutdown stops every live session, used on process exit
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	ids := make([]uuid.UUID, 0, len(m.live))
	for id := range m.live {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if _, err := m.Stop(ctx, id); err != nil && m.logger != nil {
			m.logger.Warn("shutdown stop failed", zap.String("session_id", id.String()), zap.Error(err))
		}
	}
}
