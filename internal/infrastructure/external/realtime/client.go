package realtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hoangnam-dev/persona-interview/pkg/config"
)

const defaultConnectTimeout = 15 * time.Second

// TurnTaking configures how the persona yields and takes the floor
type TurnTaking struct {
	MaxSeconds       int  `json:"max_seconds"`
	InterruptOnVoice bool `json:"interrupt_on_voice"`
}

// SessionSetup is the one-time configuration frame sent right after dialing.
// It freezes the persona's speaking behavior for the whole session.
type SessionSetup struct {
	SessionID    string     `json:"session_id"`
	VoiceID      string     `json:"voice_id"`
	SpeechRate   float64    `json:"speech_rate"`
	PersonaBrief string     `json:"persona_brief"`
	MaxSentences int        `json:"max_sentences"`
	HesitationMS int        `json:"hesitation_ms"`
	TurnTaking   TurnTaking `json:"turn_taking"`
}

// Conn is an open live voice session.
type Conn interface {
	// Events yields decoded provider frames. The channel closes when the
	// connection ends for any reason.
	Events() <-chan Event

	// SendAudio streams one interviewer microphone chunk upstream
	SendAudio(pcm []byte, seq int64) error

	// SendText sends an out-of-band text frame, used for guidance prefaces
	SendText(text string) error

	// Interrupt cuts the persona's current spoken turn
	Interrupt() error

	// End requests a graceful session shutdown
	End() error

	// Close tears the connection down and waits for the read loop to exit.
	// Safe to call more than once.
	Close() error

	// Err returns the terminal connection error, if any
	Err() error
}

// Transport opens live voice sessions against the provider.
type Transport interface {
	Open(ctx context.Context, credential string, setup SessionSetup) (Conn, error)
}

// Client dials the provider's websocket endpoint.
type Client struct {
	url    string
	logger *zap.Logger
}

// NewClient creates a new realtime transport client
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		url:    cfg.Realtime.URL,
		logger: logger,
	}
}

// Open dials the provider, authenticates with the session credential and
// sends the session config exactly once before any other frame.
func (c *Client) Open(ctx context.Context, credential string, setup SessionSetup) (Conn, error) {
	if credential == "" {
		return nil, fmt.Errorf("session credential must not be empty")
	}
	if setup.SessionID == "" {
		return nil, fmt.Errorf("session id must not be empty")
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+credential)

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, defaultConnectTimeout)
		defer cancel()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	configFrame := struct {
		Type string `json:"type"`
		SessionSetup
	}{Type: "session.config", SessionSetup: setup}
	if err := conn.WriteJSON(configFrame); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send session config: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("🔄 Live session dialed",
			zap.String("session_id", setup.SessionID),
			zap.String("voice_id", setup.VoiceID))
	}

	wc := &wsConn{
		conn:   conn,
		events: make(chan Event, 256),
		done:   make(chan struct{}),
		logger: c.logger,
	}
	go wc.readLoop()
	return wc, nil
}

type wsConn struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}
	logger *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	errMu sync.Mutex
	err   error
}

func (s *wsConn) Events() <-chan Event {
	return s.events
}

// SendAudio streams one interviewer microphone chunk upstream
func (s *wsConn) SendAudio(pcm []byte, seq int64) error {
	frame := struct {
		Type     string `json:"type"`
		Seq      int64  `json:"seq"`
		AudioB64 string `json:"audio_b64"`
	}{
		Type:     "interviewer.audio",
		Seq:      seq,
		AudioB64: base64.StdEncoding.EncodeToString(pcm),
	}
	return s.sendJSON(frame)
}

// SendText sends an out-of-band text frame
func (s *wsConn) SendText(text string) error {
	frame := struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: "client.text", Text: text}
	return s.sendJSON(frame)
}

// Interrupt cuts the persona's current spoken turn
func (s *wsConn) Interrupt() error {
	return s.sendControl("interrupt")
}

// End requests a graceful session shutdown
func (s *wsConn) End() error {
	return s.sendControl("end_session")
}

func (s *wsConn) sendControl(op string) error {
	frame := struct {
		Type string `json:"type"`
		Op   string `json:"op"`
	}{Type: "control", Op: op}
	return s.sendJSON(frame)
}

func (s *wsConn) sendJSON(v interface{}) error {
	if s.closed.Load() {
		return fmt.Errorf("live session is closed")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Close tears the connection down and waits for the read loop to exit
func (s *wsConn) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

// Err returns the terminal connection error, if any
func (s *wsConn) Err() error {
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *wsConn) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *wsConn) readLoop() {
	defer close(s.done)
	defer close(s.events)

	var pendingHeader *audioChunkHeader

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if !s.closed.Load() {
				s.setErr(err)
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			event, frameErr := decodeTextFrame(data, &pendingHeader)
			if frameErr != nil {
				s.setErr(frameErr)
				return
			}
			if event != nil {
				s.emit(event)
			}
		case websocket.BinaryMessage:
			if pendingHeader == nil {
				continue
			}
			chunk := AudioChunkEvent{
				TurnID:   pendingHeader.TurnID,
				Seq:      pendingHeader.Seq,
				Data:     append([]byte(nil), data...),
				Encoding: pendingHeader.Encoding,
			}
			pendingHeader = nil
			s.emit(chunk)
		default:
			continue
		}
	}
}

func (s *wsConn) emit(event Event) {
	select {
	case s.events <- event:
	default:
		// Avoid deadlocking the read loop if the consumer stops draining.
		if s.logger != nil {
			s.logger.Warn("dropping live event, consumer not draining",
				zap.String("type", event.eventType()))
		}
	}
}
