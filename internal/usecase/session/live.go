package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/external/realtime"
	"github.com/hoangnam-dev/persona-interview/internal/usecase/coach"
	personaknobs "github.com/hoangnam-dev/persona-interview/internal/usecase/persona"
	"github.com/hoangnam-dev/persona-interview/internal/usecase/sensitivity"
	"github.com/hoangnam-dev/persona-interview/pkg/config"
)

const maxHeldTips = 20

// Live is one active interview session: the exclusive owner of its
// transport, capture stream, playback queue, turn log and fact store.
type Live struct {
	id        uuid.UUID
	projectID uuid.UUID
	logger    *zap.Logger
	cfg       config.SessionConfig

	knobs    personaknobs.Knobs
	brief    string
	snapshot entities.PersonaSnapshot

	facts   *sensitivity.FactStore
	advisor coach.Advisor
	coach   *coach.Engine

	micMeter Meter
	outMeter Meter
	capture  *capture
	playback *playbackQueue

	mu               sync.Mutex
	state            State
	conn             realtime.Conn
	startedAt        time.Time
	turns            []entities.Turn
	interviewerTurns int
	tips             []entities.CoachTip
	lastErr          error
	guidanceTimer    *time.Timer

	finalizeMu sync.Mutex
	finalizing bool
	finalized  bool
	fallback   *entities.SessionReport

	loopDone chan struct{}
}

func newLive(id, projectID uuid.UUID, p *entities.Persona, cfg config.SessionConfig, advisor coach.Advisor, logger *zap.Logger) *Live {
	knobs := personaknobs.Derive(p)
	l := &Live{
		id:        id,
		projectID: projectID,
		logger:    logger,
		cfg:       cfg,
		knobs:     knobs,
		brief:     personaknobs.Brief(p, knobs),
		snapshot:  p.Snapshot(),
		facts:     sensitivity.NewFactStore(),
		advisor:   advisor,
		state:     StateIdle,
	}
	l.coach = coach.NewEngine(advisor, cfg.CoachDebounce, cfg.CoachCooldown, l.holdTip, logger)
	return l
}

// State returns the current connection state
func (l *Live) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastError returns the fault that moved the session to the error state
func (l *Live) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Turns returns a copy of the turn log in arrival order
func (l *Live) Turns() []entities.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]entities.Turn(nil), l.turns...)
}

// Tips drains the held coaching tips
func (l *Live) Tips() []entities.CoachTip {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.tips
	l.tips = nil
	return out
}

// Levels reports the microphone and persona output meters
func (l *Live) Levels() (mic, out float64) {
	return l.micMeter.Level(), l.outMeter.Level()
}

func (l *Live) holdTip(tip entities.CoachTip) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tips = append(l.tips, tip)
	if len(l.tips) > maxHeldTips {
		l.tips = l.tips[len(l.tips)-maxHeldTips:]
	}
}

// setup builds the one-time transport configuration from the derived knobs
func (l *Live) setup() realtime.SessionSetup {
	hesitation := sensitivity.Evaluate("", l.knobs, 0)
	return realtime.SessionSetup{
		SessionID:    l.id.String(),
		VoiceID:      l.knobs.VoiceProfileID,
		SpeechRate:   l.knobs.SpeechRate,
		PersonaBrief: l.brief,
		MaxSentences: hesitation.MaxSentences,
		HesitationMS: hesitation.HesitationMs,
		TurnTaking: realtime.TurnTaking{
			MaxSeconds:       l.knobs.TurnTaking.MaxSeconds,
			InterruptOnVoice: l.knobs.TurnTaking.InterruptOnVoice,
		},
	}
}

// beginStart guards the start action and enters the credential phase.
// Starting while the session is connecting or connected is rejected.
func (l *Live) beginStart() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.state.canStart() {
		return fmt.Errorf("session %s already %s", l.id, l.state)
	}
	l.state = StateFetchingCredentials
	return nil
}

// open continues the start sequence once the credential is in hand: dial
// the transport and start capture and playback.
func (l *Live) open(ctx context.Context, transport realtime.Transport, credential string, source Source, player Player) error {
	l.mu.Lock()
	if l.state != StateFetchingCredentials {
		l.mu.Unlock()
		return fmt.Errorf("session %s in state %s, expected credential phase", l.id, l.state)
	}
	l.state = StateConnecting
	l.lastErr = nil
	l.mu.Unlock()

	// the previous engine is unusable after a stop, build a fresh one
	l.coach = coach.NewEngine(l.advisor, l.cfg.CoachDebounce, l.cfg.CoachCooldown, l.holdTip, l.logger)

	conn, err := transport.Open(ctx, credential, l.setup())
	if err != nil {
		l.fail(fmt.Errorf("transport open: %w", err))
		return err
	}

	playback := newPlaybackQueue(player, &l.micMeter, &l.outMeter,
		l.cfg.MicPauseLevel, l.cfg.MicSilenceHold, l.logger)
	capture := newCapture(source, &l.micMeter, l.cfg.CaptureInterval,
		l.transportReady, conn.SendAudio, l.logger)

	// publish the pipeline together with the connected state so any
	// goroutine that observes the state also observes the pipeline
	l.mu.Lock()
	l.conn = conn
	l.state = StateConnected
	l.startedAt = time.Now()
	l.playback = playback
	l.capture = capture
	l.loopDone = make(chan struct{})
	l.mu.Unlock()

	go playback.run()
	go capture.run()
	go l.eventLoop(conn)

	if l.logger != nil {
		l.logger.Info("✅ Session connected",
			zap.String("session_id", l.id.String()),
			zap.String("voice_id", l.knobs.VoiceProfileID))
	}
	return nil
}

func (l *Live) transportReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateConnected
}

// eventLoop is the single consumer of transport events, preserving arrival
// order in the turn log.
func (l *Live) eventLoop(conn realtime.Conn) {
	done := l.loopDone
	defer close(done)

	for ev := range conn.Events() {
		switch e := ev.(type) {
		case realtime.PersonaTextEvent:
			if e.Final {
				l.appendPersonaTurn(e.Text, normalizeEmotions(e.Emotions), e.TimestampMS)
			}
		case realtime.InterviewerTextEvent:
			if e.Final {
				l.onInterviewerTurn(e.Text, e.TimestampMS)
			}
		case realtime.AudioChunkEvent:
			if l.playback != nil {
				l.playback.enqueue(e.Data, e.Encoding)
			}
		case realtime.VoiceActivityEvent:
			if e.Active && l.knobs.TurnTaking.InterruptOnVoice {
				l.interrupt(conn)
			}
		case realtime.EndedEvent:
			if l.logger != nil {
				l.logger.Info("🔚 Remote session ended",
					zap.String("session_id", l.id.String()),
					zap.String("reason", e.Reason))
			}
			l.remoteClosed()
			return
		case realtime.ErrorEvent:
			l.fail(fmt.Errorf("transport error %s: %s", e.Code, e.Message))
			return
		default:
			// unknown and informational frames are tolerated, not errors
		}
	}

	if err := conn.Err(); err != nil {
		l.fail(fmt.Errorf("transport closed: %w", err))
		return
	}
	l.remoteClosed()
}

func (l *Live) interrupt(conn realtime.Conn) {
	if l.playback != nil {
		l.playback.clear()
	}
	if err := conn.Interrupt(); err != nil && l.logger != nil {
		l.logger.Debug("interrupt failed", zap.Error(err))
	}
}

func normalizeEmotions(raw []realtime.RawEmotion) []entities.EmotionScore {
	if len(raw) == 0 {
		return nil
	}
	scores := make([]entities.EmotionScore, 0, len(raw))
	for _, e := range raw {
		scores = append(scores, entities.EmotionScore{Name: e.Name, Score: e.Score})
	}
	return entities.TopEmotions(scores, 3)
}

func (l *Live) appendPersonaTurn(text string, emotions []entities.EmotionScore, at int64) {
	if text == "" || sensitivity.IsGuidance(text) {
		return
	}
	if at == 0 {
		at = time.Now().UnixMilli()
	}
	l.mu.Lock()
	l.turns = append(l.turns, entities.Turn{
		Role:     entities.RolePersona,
		Text:     text,
		At:       at,
		Emotions: emotions,
	})
	l.mu.Unlock()
}

// onInterviewerTurn records the turn, scores it, schedules the guidance
// preface after the hesitation delay and feeds the coaching engine.
func (l *Live) onInterviewerTurn(text string, at int64) {
	if text == "" || sensitivity.IsGuidance(text) {
		return
	}
	if at == 0 {
		at = time.Now().UnixMilli()
	}

	l.mu.Lock()
	l.turns = append(l.turns, entities.Turn{
		Role: entities.RoleInterviewer,
		Text: text,
		At:   at,
	})
	turnsSeen := l.interviewerTurns
	l.interviewerTurns++
	recent := recentTurns(l.turns, 6)
	l.mu.Unlock()

	l.facts.Extract(text)
	score := sensitivity.Evaluate(text, l.knobs, turnsSeen)
	guidance := sensitivity.BuildGuidance(text, score, l.facts)

	if guidance != "" {
		l.scheduleGuidance(guidance, time.Duration(score.HesitationMs)*time.Millisecond)
	}

	l.coach.OnInterviewerTurn(coach.Input{
		Utterance:    text,
		RecentTurns:  recent,
		PersonaBrief: l.brief,
		Emotions:     lastPersonaEmotions(recent),
	})
}

// scheduleGuidance sends the preface after the hesitation delay, producing
// the perceptible thinking pause. A newer preface supersedes a pending one.
func (l *Live) scheduleGuidance(guidance string, delay time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateConnected {
		return
	}
	if l.guidanceTimer != nil {
		l.guidanceTimer.Stop()
	}
	conn := l.conn
	l.guidanceTimer = time.AfterFunc(delay, func() {
		l.mu.Lock()
		stillConnected := l.state == StateConnected
		l.mu.Unlock()
		if !stillConnected {
			return
		}
		if err := conn.SendText(guidance); err != nil && l.logger != nil {
			l.logger.Debug("guidance send failed", zap.Error(err))
		}
	})
}

func recentTurns(turns []entities.Turn, max int) []entities.Turn {
	if len(turns) <= max {
		return append([]entities.Turn(nil), turns...)
	}
	return append([]entities.Turn(nil), turns[len(turns)-max:]...)
}

func lastPersonaEmotions(turns []entities.Turn) []entities.EmotionScore {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == entities.RolePersona && len(turns[i].Emotions) > 0 {
			return turns[i].Emotions
		}
	}
	return nil
}

// ApplyWebhook folds one deduplicated out-of-band event into the session.
// The provider delivers at least once with no ordering guarantee, so an
// event can land after the session has stopped or failed; those are
// dropped without touching the finalized turn log.
func (l *Live) ApplyWebhook(ev WebhookEvent) {
	l.mu.Lock()
	isLive := l.state.live()
	l.mu.Unlock()
	if !isLive {
		if l.logger != nil {
			l.logger.Debug("webhook event for closed session dropped",
				zap.String("session_id", l.id.String()))
		}
		return
	}

	switch e := ev.(type) {
	case WebhookTurnEvent:
		if e.Role == entities.RoleInterviewer {
			l.onInterviewerTurn(e.Text, e.At)
		} else {
			l.appendPersonaTurn(e.Text, e.Emotions, e.At)
		}
	case WebhookEmotionEvent:
		l.attachEmotions(e.Emotions)
	case WebhookEndedEvent:
		l.remoteClosed()
	}
}

// attachEmotions decorates the most recent persona turn lacking a vector
func (l *Live) attachEmotions(emotions []entities.EmotionScore) {
	if len(emotions) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Role == entities.RolePersona {
			if len(l.turns[i].Emotions) == 0 {
				l.turns[i].Emotions = emotions
			}
			return
		}
	}
}

// fail moves the session to the error state and releases all resources
func (l *Live) fail(err error) {
	l.mu.Lock()
	alreadyDown := !l.state.live() && l.state != StateIdle
	l.state = StateError
	l.lastErr = err
	l.mu.Unlock()

	if l.logger != nil && !alreadyDown {
		l.logger.Error("❌ Session failed",
			zap.String("session_id", l.id.String()),
			zap.Error(err))
	}
	l.release()
}

// remoteClosed handles a clean remote close: resources down, back to idle
func (l *Live) remoteClosed() {
	l.mu.Lock()
	if l.state == StateIdle || l.state == StateError {
		l.mu.Unlock()
		return
	}
	l.state = StateIdle
	l.mu.Unlock()
	l.release()
}

// release tears down capture, playback, guidance timer and the coach
// engine. Safe to call from every exit path, any number of times.
func (l *Live) release() {
	l.mu.Lock()
	if l.guidanceTimer != nil {
		l.guidanceTimer.Stop()
		l.guidanceTimer = nil
	}
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()

	l.coach.Stop()
	if l.capture != nil {
		l.capture.stop()
	}
	if l.playback != nil {
		l.playback.stop()
	}
	if conn != nil {
		_ = conn.Close()
	}
}
