package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/cache"
	"github.com/hoangnam-dev/persona-interview/internal/infrastructure/external/realtime"
	"github.com/hoangnam-dev/persona-interview/pkg/token"
)

type stubSessionRepo struct {
	records map[uuid.UUID]*entities.InterviewSession
}

func (r *stubSessionRepo) Create(_ context.Context, s *entities.InterviewSession) error {
	r.records[s.ID] = s
	return nil
}

func (r *stubSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.InterviewSession, error) {
	return r.records[id], nil
}

func (r *stubSessionRepo) FindByProjectID(_ context.Context, _ uuid.UUID) ([]*entities.InterviewSession, error) {
	return nil, nil
}

func (r *stubSessionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.SessionStatus) error {
	if s, ok := r.records[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *stubSessionRepo) MarkStarted(_ context.Context, id uuid.UUID, startedAt time.Time) error {
	if s, ok := r.records[id]; ok {
		s.Status = entities.SessionStatusLive
		s.StartedAt = &startedAt
	}
	return nil
}

func (r *stubSessionRepo) MarkStopped(_ context.Context, id uuid.UUID, stoppedAt time.Time, status entities.SessionStatus) error {
	if s, ok := r.records[id]; ok {
		s.Status = status
		s.StoppedAt = &stoppedAt
	}
	return nil
}

func (r *stubSessionRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	if s, ok := r.records[id]; ok {
		s.Status = entities.SessionStatusFailed
		s.LastError = &reason
	}
	return nil
}

type stubPersonaRepo struct {
	personas map[uuid.UUID]*entities.Persona
}

func (r *stubPersonaRepo) Create(_ context.Context, p *entities.Persona) error {
	r.personas[p.ID] = p
	return nil
}

func (r *stubPersonaRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Persona, error) {
	return r.personas[id], nil
}

func (r *stubPersonaRepo) FindByProjectID(_ context.Context, _ uuid.UUID) ([]*entities.Persona, error) {
	return nil, nil
}

func (r *stubPersonaRepo) Update(_ context.Context, _ *entities.Persona) error { return nil }
func (r *stubPersonaRepo) Delete(_ context.Context, _ uuid.UUID) error         { return nil }

type stubProjectRepo struct {
	projects map[uuid.UUID]*entities.Project
}

func (r *stubProjectRepo) Create(_ context.Context, p *entities.Project) error {
	r.projects[p.ID] = p
	return nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Project, error) {
	return r.projects[id], nil
}

func (r *stubProjectRepo) List(_ context.Context) ([]*entities.Project, error) { return nil, nil }
func (r *stubProjectRepo) Update(_ context.Context, _ *entities.Project) error { return nil }
func (r *stubProjectRepo) Archive(_ context.Context, _ uuid.UUID) error        { return nil }

func newTestManager(t *testing.T) (*Manager, *entities.InterviewSession, *fakeTransport) {
	t.Helper()

	project := entities.NewProject("Checkout study", "Understand drop-off")
	p := entities.NewPersona(project.ID, "Grace")
	record := entities.NewInterviewSession(project.ID, p.ID)

	sessions := &stubSessionRepo{records: map[uuid.UUID]*entities.InterviewSession{record.ID: record}}
	personas := &stubPersonaRepo{personas: map[uuid.UUID]*entities.Persona{p.ID: p}}
	projects := &stubProjectRepo{projects: map[uuid.UUID]*entities.Project{project.ID: project}}
	reports := &stubReportRepo{}
	transport := &fakeTransport{}

	m := NewManager(
		sessions, personas, projects, reports,
		transport,
		token.NewMinter("key", "secret", time.Minute),
		cache.NewMemoryReplayGuard(200),
		nil,
		testConfig(),
		nil,
	)
	return m, record, transport
}

func TestManager_StartStopLifecycle(t *testing.T) {
	m, record, transport := newTestManager(t)
	ctx := context.Background()

	res, err := m.Start(ctx, record.ID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if res.Credential == "" {
		t.Fatal("start must return a credential")
	}
	if res.State != StateConnected {
		t.Fatalf("expected connected, got %s", res.State)
	}

	// second start while live is rejected
	if _, err := m.Start(ctx, record.ID); err == nil {
		t.Fatal("double start must be rejected")
	}

	conn := transport.last()
	conn.events <- realtime.InterviewerTextEvent{TurnID: "t-1", Text: "Tell me about your last checkout?", Final: true, TimestampMS: 100}
	waitFor(t, func() bool {
		st, err := m.Status(record.ID)
		return err == nil && len(st.Turns) == 1
	})

	report, err := m.Stop(ctx, record.ID)
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if report == nil || len(report.Turns) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if record.Status != entities.SessionStatusCompleted {
		t.Fatalf("expected completed record, got %s", record.Status)
	}

	// report is served from the cache after stop
	got, err := m.Report(ctx, record.ID)
	if err != nil {
		t.Fatalf("report read failed: %v", err)
	}
	if got.SessionID != record.ID {
		t.Fatalf("wrong report: %+v", got)
	}
}

func TestManager_StartUnknownSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	if _, err := m.Start(context.Background(), uuid.New()); err == nil {
		t.Fatal("unknown session must fail to start")
	}
}

func TestManager_WebhookDedup(t *testing.T) {
	m, record, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Start(ctx, record.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	payload := []byte(`{"type":"transcript","id":"evt-1","role":"user","text":"What happened?"}`)
	if err := m.Webhook(ctx, record.ID, payload); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := m.Webhook(ctx, record.ID, payload); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}

	st, err := m.Status(record.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if len(st.Turns) != 1 {
		t.Fatalf("replayed event must yield exactly one turn, got %d", len(st.Turns))
	}
}

func TestManager_WebhookAfterStopIgnored(t *testing.T) {
	m, record, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Start(ctx, record.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := m.Stop(ctx, record.ID); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	// a late delivery for the finalized session must not grow the turn log
	payload := []byte(`{"type":"transcript","id":"evt-late","role":"user","text":"One more thing?"}`)
	if err := m.Webhook(ctx, record.ID, payload); err != nil {
		t.Fatalf("late delivery failed: %v", err)
	}

	st, err := m.Status(record.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if len(st.Turns) != 0 {
		t.Fatalf("stopped session must ignore webhook turns, got %d", len(st.Turns))
	}
	if st.State != StateIdle {
		t.Fatalf("expected idle after stop, got %s", st.State)
	}
}

func TestManager_WebhookEarlyDeliveryRetryStillLands(t *testing.T) {
	m, record, _ := newTestManager(t)
	ctx := context.Background()

	// delivered before the session goes live: dropped, but the event id
	// must stay unconsumed so the provider's retry is not deduplicated
	payload := []byte(`{"type":"transcript","id":"evt-early","role":"user","text":"Are we on?"}`)
	if err := m.Webhook(ctx, record.ID, payload); err != nil {
		t.Fatalf("early delivery failed: %v", err)
	}

	if _, err := m.Start(ctx, record.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if err := m.Webhook(ctx, record.ID, payload); err != nil {
		t.Fatalf("retry delivery failed: %v", err)
	}
	st, err := m.Status(record.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if len(st.Turns) != 1 {
		t.Fatalf("retried event must yield one turn, got %d", len(st.Turns))
	}
}

func TestManager_PushAudioLifecycle(t *testing.T) {
	m, record, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Start(ctx, record.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := m.PushAudio(record.ID, []byte{0x01, 0x00}); err != nil {
		t.Fatalf("push while connected failed: %v", err)
	}

	if _, err := m.Stop(ctx, record.ID); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := m.PushAudio(record.ID, []byte{0x01, 0x00}); err == nil {
		t.Fatal("push after stop must be rejected")
	}
}

func TestManager_WebhookUnknownSessionNoStateChange(t *testing.T) {
	m, _, _ := newTestManager(t)
	payload := []byte(`{"type":"transcript","id":"evt-1","role":"user","text":"Hello?"}`)
	if err := m.Webhook(context.Background(), uuid.New(), payload); err != nil {
		t.Fatalf("unknown session webhook should be a silent drop: %v", err)
	}
}
