package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingPlayer struct {
	mu         sync.Mutex
	plays      int
	concurrent int32
	overlapped bool
	delay      time.Duration
}

func (p *recordingPlayer) Play(ctx context.Context, chunk []byte, encoding string) error {
	if atomic.AddInt32(&p.concurrent, 1) > 1 {
		p.mu.Lock()
		p.overlapped = true
		p.mu.Unlock()
	}
	defer atomic.AddInt32(&p.concurrent, -1)

	p.mu.Lock()
	p.plays++
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.delay):
		return nil
	}
}

func (p *recordingPlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

func TestMeter_Sample(t *testing.T) {
	var m Meter

	if m.Level() != 0 {
		t.Fatalf("fresh meter should read 0, got %v", m.Level())
	}

	// silence
	m.Sample(make([]byte, 640))
	if m.Level() != 0 {
		t.Fatalf("silence should read 0, got %v", m.Level())
	}

	// full-scale square wave
	loud := make([]byte, 640)
	for i := 0; i+1 < len(loud); i += 2 {
		loud[i] = 0xFF
		loud[i+1] = 0x7F
	}
	m.Sample(loud)
	if m.Level() < 0.9 {
		t.Fatalf("full-scale signal should read near 1, got %v", m.Level())
	}

	m.Reset()
	if m.Level() != 0 {
		t.Fatalf("reset should zero the meter, got %v", m.Level())
	}
}

func TestPlaybackQueue_SequentialPlayback(t *testing.T) {
	player := &recordingPlayer{delay: 10 * time.Millisecond}
	mic := &Meter{}
	out := &Meter{}

	q := newPlaybackQueue(player, mic, out, 0.12, time.Millisecond, nil)
	go q.run()

	const n = 5
	for i := 0; i < n; i++ {
		q.enqueue(make([]byte, 64), "pcm_s16le")
	}

	deadline := time.After(2 * time.Second)
	for player.playCount() < n {
		select {
		case <-deadline:
			t.Fatalf("expected %d plays, got %d", n, player.playCount())
		case <-time.After(10 * time.Millisecond):
		}
	}

	q.stop()

	if player.overlapped {
		t.Fatal("two chunks played concurrently")
	}
	if got := player.playCount(); got != n {
		t.Fatalf("expected exactly %d play starts, got %d", n, got)
	}
}

func TestPlaybackQueue_PausesWhileMicHot(t *testing.T) {
	player := &recordingPlayer{delay: time.Millisecond}
	mic := &Meter{}
	out := &Meter{}

	// mic hot before anything is queued
	hot := make([]byte, 64)
	for i := 0; i+1 < len(hot); i += 2 {
		hot[i] = 0xFF
		hot[i+1] = 0x7F
	}
	mic.Sample(hot)

	q := newPlaybackQueue(player, mic, out, 0.12, 30*time.Millisecond, nil)
	go q.run()
	defer q.stop()

	q.enqueue(make([]byte, 64), "pcm_s16le")

	time.Sleep(60 * time.Millisecond)
	if player.playCount() != 0 {
		t.Fatal("playback should hold while the mic is hot")
	}

	// silence resumes playback after the hold-off
	mic.Reset()
	deadline := time.After(2 * time.Second)
	for player.playCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("playback never resumed after silence")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPlaybackQueue_StopIsIdempotent(t *testing.T) {
	player := &recordingPlayer{}
	q := newPlaybackQueue(player, &Meter{}, &Meter{}, 0.12, time.Millisecond, nil)
	go q.run()

	q.stop()
	q.stop() // second stop must not panic or deadlock

	q.enqueue(make([]byte, 4), "pcm_s16le") // discarded after stop
	if player.playCount() != 0 {
		t.Fatal("no chunk should play after stop")
	}
}

func TestCapture_DropsWhenTransportNotReady(t *testing.T) {
	source := NewChannelSource()
	meter := &Meter{}

	var ready atomic.Bool
	var sent int32
	send := func(chunk []byte, seq int64) error {
		atomic.AddInt32(&sent, 1)
		return nil
	}

	c := newCapture(source, meter, 10*time.Millisecond, func() bool { return ready.Load() }, send, nil)
	go c.run()

	// frames while not ready are dropped
	source.Push(make([]byte, 320))
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&sent) != 0 {
		t.Fatal("chunks must be dropped before transport readiness")
	}

	ready.Store(true)
	source.Push(make([]byte, 320))

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&sent) == 0 {
		select {
		case <-deadline:
			t.Fatal("chunk never forwarded after readiness")
		case <-time.After(10 * time.Millisecond):
		}
	}

	c.stop()
	c.stop() // idempotent
}

func TestChannelSource_PushAfterClose(t *testing.T) {
	s := NewChannelSource()
	_ = s.Close()
	_ = s.Close() // idempotent

	// must not panic
	if s.Push(make([]byte, 4)) {
		t.Fatal("push after close should not be accepted")
	}
}
