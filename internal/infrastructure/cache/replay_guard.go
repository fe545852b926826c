package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard remembers recently delivered webhook event IDs so redelivered
// events can be dropped. Each session keeps its own bounded window; once the
// window overflows, the oldest IDs are forgotten.
type ReplayGuard interface {
	// Seen records the event ID and reports whether it was already present
	// within the session's window.
	Seen(ctx context.Context, sessionID, eventID string) (bool, error)

	// Forget drops all remembered IDs for a session
	Forget(ctx context.Context, sessionID string) error
}

// RedisReplayGuard backs the replay window with a per-session sorted set,
// scored by arrival time and trimmed to the window size.
type RedisReplayGuard struct {
	client *redis.Client
	window int
	ttl    time.Duration
}

// NewRedisReplayGuard creates a replay guard on top of Redis
func NewRedisReplayGuard(client *redis.Client, window int) *RedisReplayGuard {
	if window <= 0 {
		window = 200
	}
	return &RedisReplayGuard{
		client: client,
		window: window,
		ttl:    2 * time.Hour,
	}
}

func (g *RedisReplayGuard) key(sessionID string) string {
	return fmt.Sprintf("replay:%s", sessionID)
}

// Seen records the event ID and reports whether it was already present
func (g *RedisReplayGuard) Seen(ctx context.Context, sessionID, eventID string) (bool, error) {
	key := g.key(sessionID)

	if err := g.client.ZScore(ctx, key, eventID).Err(); err == nil {
		return true, nil
	} else if err != redis.Nil {
		return false, fmt.Errorf("failed to check replay window: %w", err)
	}

	pipe := g.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(time.Now().UnixMilli()), Member: eventID})
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-(g.window + 1)))
	pipe.Expire(ctx, key, g.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record event in replay window: %w", err)
	}
	return false, nil
}

// Forget drops all remembered IDs for a session
func (g *RedisReplayGuard) Forget(ctx context.Context, sessionID string) error {
	if err := g.client.Del(ctx, g.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear replay window: %w", err)
	}
	return nil
}

// MemoryReplayGuard is the in-process fallback used when Redis is not
// configured. Same window semantics, no cross-instance visibility.
type MemoryReplayGuard struct {
	mu       sync.Mutex
	window   int
	sessions map[string]*replayWindow
}

type replayWindow struct {
	seen  map[string]struct{}
	order []string
}

// NewMemoryReplayGuard creates an in-memory replay guard
func NewMemoryReplayGuard(window int) *MemoryReplayGuard {
	if window <= 0 {
		window = 200
	}
	return &MemoryReplayGuard{
		window:   window,
		sessions: make(map[string]*replayWindow),
	}
}

// Seen records the event ID and reports whether it was already present
func (g *MemoryReplayGuard) Seen(_ context.Context, sessionID, eventID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	win, ok := g.sessions[sessionID]
	if !ok {
		win = &replayWindow{seen: make(map[string]struct{})}
		g.sessions[sessionID] = win
	}

	if _, dup := win.seen[eventID]; dup {
		return true, nil
	}

	win.seen[eventID] = struct{}{}
	win.order = append(win.order, eventID)
	for len(win.order) > g.window {
		oldest := win.order[0]
		win.order = win.order[1:]
		delete(win.seen, oldest)
	}
	return false, nil
}

// Forget drops all remembered IDs for a session
func (g *MemoryReplayGuard) Forget(_ context.Context, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, sessionID)
	return nil
}
