package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockTransport is a provider stand-in for local development. Every audio
// chunk sent upstream is answered with a short scripted persona turn.
type MockTransport struct{}

// NewMockTransport creates a mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Open returns a connection that never dials anything
func (m *MockTransport) Open(_ context.Context, credential string, setup SessionSetup) (Conn, error) {
	if credential == "" {
		return nil, fmt.Errorf("session credential must not be empty")
	}
	mc := &mockConn{
		setup:  setup,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	mc.events <- ReadyEvent{ProviderSessionID: "mock-" + setup.SessionID}
	return mc, nil
}

type mockConn struct {
	setup  SessionSetup
	events chan Event
	done   chan struct{}

	mu       sync.Mutex
	closed   bool
	turnSeq  int
	lastSeen time.Time
}

func (m *mockConn) Events() <-chan Event {
	return m.events
}

// SendAudio acknowledges interviewer audio with a scripted reply. Replies
// are rate limited to one per second so chunked capture does not produce a
// reply per chunk.
func (m *mockConn) SendAudio(_ []byte, seq int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("live session is closed")
	}
	if time.Since(m.lastSeen) < time.Second {
		return nil
	}
	m.lastSeen = time.Now()
	m.turnSeq++
	turnID := fmt.Sprintf("mock-turn-%d", m.turnSeq)
	now := time.Now().UnixMilli()

	m.push(InterviewerTextEvent{
		TurnID:      fmt.Sprintf("mock-q-%d", m.turnSeq),
		Text:        "(mock transcript)",
		Final:       true,
		TimestampMS: now,
	})
	m.push(PersonaTextEvent{
		TurnID:      turnID,
		Text:        fmt.Sprintf("That's a good question. Let me think about it. (%s)", m.setup.PersonaBrief),
		Final:       true,
		Emotions:    []RawEmotion{{Name: "calm", Score: 0.8}},
		TimestampMS: now,
	})
	m.push(AudioChunkEvent{TurnID: turnID, Seq: seq, Data: make([]byte, 320), Encoding: "pcm_s16le"})
	m.push(AudioDoneEvent{TurnID: turnID})
	return nil
}

func (m *mockConn) push(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *mockConn) SendText(_ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("live session is closed")
	}
	return nil
}

func (m *mockConn) Interrupt() error { return nil }

func (m *mockConn) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.push(EndedEvent{Reason: "client_requested"})
	return nil
}

// Close tears the mock session down
func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.events)
	close(m.done)
	return nil
}

func (m *mockConn) Err() error { return nil }
