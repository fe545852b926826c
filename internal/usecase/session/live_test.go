package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/external/realtime"
	"github.com/hoangnam-dev/persona-interview/pkg/config"
)

// fakeConn is a scriptable transport connection
type fakeConn struct {
	events chan realtime.Event

	mu         sync.Mutex
	sentTexts  []string
	sentAudio  int
	interrupts int
	ended      bool
	closed     bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan realtime.Event, 64)}
}

func (c *fakeConn) Events() <-chan realtime.Event { return c.events }

func (c *fakeConn) SendAudio(pcm []byte, seq int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentAudio++
	return nil
}

func (c *fakeConn) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentTexts = append(c.sentTexts, text)
	return nil
}

func (c *fakeConn) Interrupt() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interrupts++
	return nil
}

func (c *fakeConn) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

func (c *fakeConn) Err() error { return nil }

func (c *fakeConn) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sentTexts...)
}

type fakeTransport struct {
	mu    sync.Mutex
	conns []*fakeConn
	err   error
}

func (t *fakeTransport) Open(_ context.Context, credential string, setup realtime.SessionSetup) (realtime.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return nil, t.err
	}
	c := newFakeConn()
	t.conns = append(t.conns, c)
	return c, nil
}

func (t *fakeTransport) last() *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.conns) == 0 {
		return nil
	}
	return t.conns[len(t.conns)-1]
}

// stubReportRepo counts saves and can fail a set number of times
type stubReportRepo struct {
	mu       sync.Mutex
	saves    int
	inFlight int
	maxIn    int
	failures int
	stored   *entities.SessionReport
}

func (r *stubReportRepo) Save(_ context.Context, report *entities.SessionReport) error {
	r.mu.Lock()
	r.saves++
	r.inFlight++
	if r.inFlight > r.maxIn {
		r.maxIn = r.inFlight
	}
	fail := r.failures > 0
	if fail {
		r.failures--
	}
	r.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	r.mu.Lock()
	r.inFlight--
	if !fail {
		r.stored = report
	}
	r.mu.Unlock()

	if fail {
		return errors.New("store unavailable")
	}
	return nil
}

func (r *stubReportRepo) FindBySessionID(_ context.Context, sessionID uuid.UUID) (*entities.SessionReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored != nil && r.stored.SessionID == sessionID {
		return r.stored, nil
	}
	return nil, nil
}

func (r *stubReportRepo) FindByProjectID(_ context.Context, _ uuid.UUID) ([]*entities.SessionReport, error) {
	return nil, nil
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		CoachDebounce:    10 * time.Millisecond,
		CoachCooldown:    time.Hour,
		FinalizeAttempts: 3,
		FinalizeTimeout:  500 * time.Millisecond,
		FinalizeBackoff:  5 * time.Millisecond,
		CaptureInterval:  10 * time.Millisecond,
		MicPauseLevel:    0.12,
		MicSilenceHold:   time.Millisecond,
		DedupWindow:      200,
		ReportCacheSize:  8,
	}
}

func startedLive(t *testing.T) (*Live, *fakeTransport) {
	t.Helper()

	p := entities.NewPersona(uuid.New(), "Test Persona")
	l := newLive(uuid.New(), p.ProjectID, p, testConfig(), nil, nil)

	transport := &fakeTransport{}
	if err := l.beginStart(); err != nil {
		t.Fatalf("beginStart failed: %v", err)
	}
	if err := l.open(context.Background(), transport, "cred", NewChannelSource(), NewPacedPlayer(0)); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return l, transport
}

func TestLive_StartGuardedAgainstDoubleStart(t *testing.T) {
	l, _ := startedLive(t)
	defer l.release()

	if l.State() != StateConnected {
		t.Fatalf("expected connected, got %s", l.State())
	}
	if err := l.beginStart(); err == nil {
		t.Fatal("starting a connected session must be rejected")
	}
}

func TestLive_TurnsAppendInArrivalOrder(t *testing.T) {
	l, transport := startedLive(t)
	defer l.release()
	conn := transport.last()

	conn.events <- realtime.InterviewerTextEvent{TurnID: "q1", Text: "How was your week?", Final: true, TimestampMS: 100}
	conn.events <- realtime.PersonaTextEvent{TurnID: "a1", Text: "Busy, honestly.", Final: true, TimestampMS: 90}
	conn.events <- realtime.PersonaTextEvent{TurnID: "a2", Text: "partial", Final: false}
	conn.events <- realtime.UnknownEvent{Type: "metrics.tick"}

	waitFor(t, func() bool { return len(l.Turns()) == 2 })

	turns := l.Turns()
	if turns[0].Role != entities.RoleInterviewer || turns[1].Role != entities.RolePersona {
		t.Fatalf("arrival order broken: %+v", turns)
	}
	if turns[1].At != 90 {
		t.Fatal("ordering must follow arrival, not timestamps")
	}
}

func TestLive_GuidanceSentAfterHesitation(t *testing.T) {
	l, transport := startedLive(t)
	defer l.release()
	conn := transport.last()

	conn.events <- realtime.InterviewerTextEvent{
		Text: "What is your home address?", Final: true, TimestampMS: 100,
	}

	waitFor(t, func() bool { return len(conn.texts()) == 1 })

	g := conn.texts()[0]
	if !strings.HasPrefix(g, "[guidance]") {
		t.Fatalf("expected guidance preface, got %q", g)
	}
	if !strings.Contains(g, "admit you are not sure") {
		t.Fatalf("unknown address should instruct uncertainty: %q", g)
	}
}

func TestLive_VoiceActivityInterrupts(t *testing.T) {
	l, transport := startedLive(t)
	defer l.release()
	conn := transport.last()

	conn.events <- realtime.VoiceActivityEvent{Active: true}

	waitFor(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.interrupts == 1
	})
}

func TestLive_StopIdempotentSinglePersist(t *testing.T) {
	l, transport := startedLive(t)
	repo := &stubReportRepo{}

	conn := transport.last()
	conn.events <- realtime.InterviewerTextEvent{Text: "Hello?", Final: true}
	waitFor(t, func() bool { return len(l.Turns()) == 1 })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Stop(context.Background(), repo)
		}()
	}
	wg.Wait()

	// repeated stop after completion is also a no-op
	report, err := l.Stop(context.Background(), repo)
	if err != nil {
		t.Fatalf("stop after stop errored: %v", err)
	}
	if report == nil || len(report.Turns) != 1 {
		t.Fatalf("expected the finalized report, got %+v", report)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.maxIn > 1 {
		t.Fatalf("more than one persistence request in flight: %d", repo.maxIn)
	}
	if repo.saves != 1 {
		t.Fatalf("expected exactly one save, got %d", repo.saves)
	}
	if l.State() != StateIdle {
		t.Fatalf("expected idle after stop, got %s", l.State())
	}
}

func TestLive_StopRetriesThenFallback(t *testing.T) {
	l, _ := startedLive(t)
	repo := &stubReportRepo{failures: 99} // every attempt fails

	report, err := l.Stop(context.Background(), repo)
	if err == nil {
		t.Fatal("expected a persistence failure")
	}
	if report == nil {
		t.Fatal("fallback snapshot must survive a failed persist")
	}

	repo.mu.Lock()
	saves := repo.saves
	repo.mu.Unlock()
	if saves != 3 {
		t.Fatalf("expected 3 bounded attempts, got %d", saves)
	}

	if l.Fallback() == nil {
		t.Fatal("fallback snapshot missing")
	}

	// retry succeeds once the store recovers
	repo.mu.Lock()
	repo.failures = 0
	repo.mu.Unlock()
	if _, err := l.RetryPersist(context.Background(), repo); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
}

func TestLive_RemoteEndedReleasesResources(t *testing.T) {
	l, transport := startedLive(t)
	conn := transport.last()

	conn.events <- realtime.EndedEvent{Reason: "remote hangup"}

	waitFor(t, func() bool { return l.State() == StateIdle })

	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed {
		t.Fatal("transport must be closed on remote end")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition never satisfied")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
