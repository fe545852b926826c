package session

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Source delivers raw microphone frames from the interviewer's client.
// The channel closes when the client stops sending.
type Source interface {
	Frames() <-chan []byte
	Close() error
}

// Player delivers one synthesized persona audio chunk to the interviewer's
// client and returns when playback of that chunk has finished. Sequential
// calls guarantee persona speech never overlaps itself.
type Player interface {
	Play(ctx context.Context, chunk []byte, encoding string) error
}

// Meter tracks a root mean square amplitude in [0,1] over the most recent
// audio buffer. Purely observational.
type Meter struct {
	mu    sync.Mutex
	level float64
}

// Sample updates the meter from a pcm_s16le buffer
func (m *Meter) Sample(pcm []byte) {
	n := len(pcm) / 2
	if n == 0 {
		return
	}
	var sum float64
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		v := float64(s) / 32768.0
		sum += v * v
	}
	level := math.Sqrt(sum / float64(n))

	m.mu.Lock()
	m.level = level
	m.mu.Unlock()
}

// Level returns the last computed amplitude
func (m *Meter) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Reset zeroes the meter
func (m *Meter) Reset() {
	m.mu.Lock()
	m.level = 0
	m.mu.Unlock()
}

// capture segments microphone frames into fixed-interval chunks and
// forwards them while the transport is ready. Chunks produced before
// readiness or after close are dropped, never buffered.
type capture struct {
	source   Source
	meter    *Meter
	interval time.Duration
	ready    func() bool
	send     func(chunk []byte, seq int64) error
	logger   *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newCapture(source Source, meter *Meter, interval time.Duration, ready func() bool, send func([]byte, int64) error, logger *zap.Logger) *capture {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &capture{
		source:   source,
		meter:    meter,
		interval: interval,
		ready:    ready,
		send:     send,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (c *capture) run() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var buf []byte
	var seq int64

	for {
		select {
		case <-c.stopCh:
			return
		case frame, ok := <-c.source.Frames():
			if !ok {
				return
			}
			c.meter.Sample(frame)
			buf = append(buf, frame...)
		case <-ticker.C:
			if len(buf) == 0 {
				continue
			}
			chunk := buf
			buf = nil
			if !c.ready() {
				continue // dropped, not buffered
			}
			seq++
			if err := c.send(chunk, seq); err != nil && c.logger != nil {
				c.logger.Debug("dropping mic chunk", zap.Error(err))
			}
		}
	}
}

// stop halts capture and releases the source. Idempotent.
func (c *capture) stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		_ = c.source.Close()
	})
	<-c.doneCh
	c.meter.Reset()
}

type playbackChunk struct {
	data     []byte
	encoding string
}

// playbackQueue plays persona audio chunks strictly one at a time in FIFO
// order. While the microphone level is above the pause threshold, playback
// holds and resumes only after a short silence hold-off.
type playbackQueue struct {
	player      Player
	micMeter    *Meter
	outMeter    *Meter
	pauseLevel  float64
	silenceHold time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	pending []playbackChunk
	playing bool
	stopped bool

	wake     chan struct{}
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newPlaybackQueue(player Player, micMeter, outMeter *Meter, pauseLevel float64, silenceHold time.Duration, logger *zap.Logger) *playbackQueue {
	if pauseLevel <= 0 {
		pauseLevel = 0.12
	}
	if silenceHold <= 0 {
		silenceHold = 600 * time.Millisecond
	}
	return &playbackQueue{
		player:      player,
		micMeter:    micMeter,
		outMeter:    outMeter,
		pauseLevel:  pauseLevel,
		silenceHold: silenceHold,
		logger:      logger,
		wake:        make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// enqueue appends a chunk. Chunks arriving after stop are discarded.
func (q *playbackQueue) enqueue(data []byte, encoding string) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, playbackChunk{data: data, encoding: encoding})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// clear drops all pending chunks, used on interruption
func (q *playbackQueue) clear() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
}

func (q *playbackQueue) run() {
	defer close(q.doneCh)

	for {
		chunk, ok := q.next()
		if !ok {
			select {
			case <-q.wake:
				continue
			case <-q.stopCh:
				return
			}
		}

		if !q.waitForSilence() {
			return
		}

		q.mu.Lock()
		q.playing = true
		q.mu.Unlock()

		q.outMeter.Sample(chunk.data)
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			select {
			case <-q.stopCh:
				cancel()
			case <-ctx.Done():
			}
		}()
		err := q.player.Play(ctx, chunk.data, chunk.encoding)
		cancel()

		q.mu.Lock()
		q.playing = false
		q.mu.Unlock()

		if err != nil && q.logger != nil {
			q.logger.Debug("playback chunk failed", zap.Error(err))
		}

		select {
		case <-q.stopCh:
			return
		default:
		}
	}
}

func (q *playbackQueue) next() (playbackChunk, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return playbackChunk{}, false
	}
	chunk := q.pending[0]
	q.pending = q.pending[1:]
	return chunk, true
}

// waitForSilence blocks while the interviewer is speaking. Playback resumes
// only after the microphone has been quiet for the silence hold-off.
// Returns false if the queue was stopped while waiting.
func (q *playbackQueue) waitForSilence() bool {
	if q.micMeter == nil {
		return true
	}

	var lastVoice time.Time
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if q.micMeter.Level() > q.pauseLevel {
			lastVoice = time.Now()
		} else if lastVoice.IsZero() || time.Since(lastVoice) >= q.silenceHold {
			return true
		}

		select {
		case <-q.stopCh:
			return false
		case <-ticker.C:
		}
	}
}

// stop halts playback and clears the queue. Idempotent, safe from multiple
// exit paths.
func (q *playbackQueue) stop() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		q.pending = nil
		q.mu.Unlock()
		close(q.stopCh)
	})
	<-q.doneCh
	q.outMeter.Reset()
}
