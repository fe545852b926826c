package coach

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/external/advisory"
)

type stubAdvisor struct {
	mu    sync.Mutex
	calls int
	tip   entities.CoachTip
	err   error
}

func (s *stubAdvisor) Available() bool { return true }

func (s *stubAdvisor) Suggest(_ context.Context, _ advisory.TipRequest) (entities.CoachTip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.tip, s.err
}

func (s *stubAdvisor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func collectTips() (func(entities.CoachTip), func() []entities.CoachTip) {
	var mu sync.Mutex
	var tips []entities.CoachTip
	emit := func(t entities.CoachTip) {
		mu.Lock()
		tips = append(tips, t)
		mu.Unlock()
	}
	snapshot := func() []entities.CoachTip {
		mu.Lock()
		defer mu.Unlock()
		return append([]entities.CoachTip(nil), tips...)
	}
	return emit, snapshot
}

func TestEngine_DebounceCollapsesRapidTurns(t *testing.T) {
	adv := &stubAdvisor{tip: entities.CoachTip{
		Label:    entities.CoachLabelGeneric,
		Message:  "remote tip",
		Severity: entities.CoachSeverityInfo,
	}}
	emit, tips := collectTips()

	e := NewEngine(adv, 30*time.Millisecond, time.Hour, emit, nil)
	defer e.Stop()

	e.OnInterviewerTurn(Input{Utterance: "first draft"})
	e.OnInterviewerTurn(Input{Utterance: "second draft"})
	e.OnInterviewerTurn(Input{Utterance: "settled question?"})

	time.Sleep(150 * time.Millisecond)

	if got := adv.callCount(); got != 1 {
		t.Fatalf("expected 1 advisory call got %d", got)
	}
	if got := tips(); len(got) != 1 || got[0].Message != "remote tip" {
		t.Fatalf("expected one remote tip got %+v", got)
	}
}

func TestEngine_CooldownSuppressesSecondEvaluation(t *testing.T) {
	adv := &stubAdvisor{tip: entities.CoachTip{
		Label:    entities.CoachLabelGeneric,
		Message:  "remote tip",
		Severity: entities.CoachSeverityInfo,
	}}
	emit, tips := collectTips()

	e := NewEngine(adv, 10*time.Millisecond, time.Hour, emit, nil)
	defer e.Stop()

	e.OnInterviewerTurn(Input{Utterance: "question one?"})
	time.Sleep(80 * time.Millisecond)
	e.OnInterviewerTurn(Input{Utterance: "question two?"})
	time.Sleep(80 * time.Millisecond)

	if got := adv.callCount(); got != 1 {
		t.Fatalf("cooldown should block the second call, got %d", got)
	}
	if got := tips(); len(got) != 1 {
		t.Fatalf("expected one tip got %d", len(got))
	}
}

func TestEngine_FallsBackToHeuristicsOnAdvisorError(t *testing.T) {
	adv := &stubAdvisor{err: errors.New("unreachable")}
	emit, tips := collectTips()

	e := NewEngine(adv, 10*time.Millisecond, time.Hour, emit, nil)
	defer e.Stop()

	e.OnInterviewerTurn(Input{Utterance: "What is your salary?"})
	time.Sleep(80 * time.Millisecond)

	got := tips()
	if len(got) != 1 {
		t.Fatalf("expected one fallback tip got %d", len(got))
	}
	if got[0].Label != entities.CoachLabelTooPersonal {
		t.Fatalf("expected too_personal label got %s", got[0].Label)
	}
}

func TestEngine_StopCancelsPendingEvaluation(t *testing.T) {
	adv := &stubAdvisor{}
	emit, tips := collectTips()

	e := NewEngine(adv, 50*time.Millisecond, time.Hour, emit, nil)
	e.OnInterviewerTurn(Input{Utterance: "never evaluated"})
	e.Stop()

	time.Sleep(120 * time.Millisecond)

	if got := adv.callCount(); got != 0 {
		t.Fatalf("expected no advisory calls after stop, got %d", got)
	}
	if got := tips(); len(got) != 0 {
		t.Fatalf("expected no tips after stop, got %d", len(got))
	}
}

func TestClassify_Categories(t *testing.T) {
	cases := []struct {
		utterance string
		want      entities.CoachLabel
	}{
		{"Thanks, that makes sense.", entities.CoachLabelRapport},
		{"What is your income right now?", entities.CoachLabelTooPersonal},
		{"Are you sure about that?", entities.CoachLabelFactCheck},
		{"Where do you shop and when do you usually go?", entities.CoachLabelDoubleBarreled},
		{"That sounds ridiculous to me.", entities.CoachLabelHostileTone},
		{"Describe your last grocery trip.", entities.CoachLabelOpenQuestion},
		{"Ok.", entities.CoachLabelGeneric},
	}

	for _, c := range cases {
		tip := Classify(c.utterance)
		if tip.Label != c.want {
			t.Fatalf("%q: expected %s got %s", c.utterance, c.want, tip.Label)
		}
		if tip.Message == "" {
			t.Fatalf("%q: tip must carry a message", c.utterance)
		}
	}
}
