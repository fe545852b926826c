package coach

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/external/advisory"
)

// Advisor is the remote coaching service contract. Failures are recovered
// locally; the engine never surfaces advisor errors.
type Advisor interface {
	Available() bool
	Suggest(ctx context.Context, req advisory.TipRequest) (entities.CoachTip, error)
}

// Turn context passed along with each evaluation request.
type Input struct {
	Utterance    string
	RecentTurns  []entities.Turn
	PersonaBrief string
	Emotions     []entities.EmotionScore
}

// Engine schedules one tip evaluation per settled interviewer utterance.
// A debounce collapses rapid successive turns into one evaluation; a
// separate cooldown bounds the advisory rate regardless of turn frequency.
// One engine per live session.
type Engine struct {
	advisor  Advisor
	logger   *zap.Logger
	debounce time.Duration
	cooldown time.Duration
	emit     func(entities.CoachTip)

	mu        sync.Mutex
	timer     *time.Timer
	lastFired time.Time
	closed    bool

	// replaced in tests
	now func() time.Time
}

// NewEngine creates a coaching engine. emit is called from a background
// goroutine whenever a tip is ready; it must not block.
func NewEngine(advisor Advisor, debounce, cooldown time.Duration, emit func(entities.CoachTip), logger *zap.Logger) *Engine {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if cooldown <= 0 {
		cooldown = 7 * time.Second
	}
	return &Engine{
		advisor:  advisor,
		logger:   logger,
		debounce: debounce,
		cooldown: cooldown,
		emit:     emit,
		now:      time.Now,
	}
}

// OnInterviewerTurn schedules an evaluation for the utterance. A pending
// evaluation for an earlier utterance is superseded, not stacked.
func (e *Engine) OnInterviewerTurn(in Input) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() {
		e.evaluate(in)
	})
}

// Stop cancels any pending evaluation. Late advisory results for a stopped
// engine are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) evaluate(in Input) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.now().Sub(e.lastFired) < e.cooldown {
		e.mu.Unlock()
		return
	}
	e.lastFired = e.now()
	e.mu.Unlock()

	tip := e.requestTip(in)
	if tip.IsEmpty() {
		tip = Classify(in.Utterance)
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed || e.emit == nil {
		return
	}
	e.emit(tip)
}

func (e *Engine) requestTip(in Input) entities.CoachTip {
	if e.advisor == nil || !e.advisor.Available() {
		return entities.CoachTip{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tip, err := e.advisor.Suggest(ctx, advisory.TipRequest{
		RecentTurns:      in.RecentTurns,
		CurrentUtterance: in.Utterance,
		PersonaBrief:     in.PersonaBrief,
		RecentEmotions:   in.Emotions,
	})
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("advisory request failed, falling back to heuristics", zap.Error(err))
		}
		return entities.CoachTip{}
	}
	return tip
}
