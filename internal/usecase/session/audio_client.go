package session

import (
	"context"
	"sync"
	"time"
)

// ChannelSource adapts microphone frames delivered over HTTP into the
// capture pipeline. Frames pushed while the buffer is full are dropped;
// live audio is worthless late.
type ChannelSource struct {
	ch        chan []byte
	closeOnce sync.Once
}

// NewChannelSource creates a source with a small frame buffer
func NewChannelSource() *ChannelSource {
	return &ChannelSource{ch: make(chan []byte, 32)}
}

// Push hands one frame to the pipeline, reporting whether it was accepted
func (s *ChannelSource) Push(frame []byte) bool {
	defer func() { recover() }() // a push racing Close loses the frame, nothing more
	select {
	case s.ch <- frame:
		return true
	default:
		return false
	}
}

// Frames exposes the frame stream to the capture loop
func (s *ChannelSource) Frames() <-chan []byte {
	return s.ch
}

// Close ends the stream. Idempotent.
func (s *ChannelSource) Close() error {
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}

// OutChunk is one persona audio chunk ready for client pickup
type OutChunk struct {
	Data     []byte
	Encoding string
}

// PacedPlayer queues persona audio for client polling and paces playback by
// the chunk's estimated duration, assuming pcm_s16le mono at the configured
// sample rate. Pacing is what keeps the queue sequential without a client
// completion signal.
type PacedPlayer struct {
	sampleRate int
	outbox     chan OutChunk
}

// NewPacedPlayer creates a player; sampleRate defaults to 16000
func NewPacedPlayer(sampleRate int) *PacedPlayer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &PacedPlayer{
		sampleRate: sampleRate,
		outbox:     make(chan OutChunk, 64),
	}
}

// Play queues the chunk and blocks for its estimated duration
func (p *PacedPlayer) Play(ctx context.Context, chunk []byte, encoding string) error {
	select {
	case p.outbox <- OutChunk{Data: chunk, Encoding: encoding}:
	default:
		// client is not picking up, skip rather than stall the session
		return nil
	}

	samples := len(chunk) / 2
	d := time.Duration(samples) * time.Second / time.Duration(p.sampleRate)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Outbox exposes queued chunks for the delivery handler
func (p *PacedPlayer) Outbox() <-chan OutChunk {
	return p.outbox
}
