package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/domain/repositories"
)

// Stop finalizes the session: halt capture and playback immediately, end
// the remote transport gracefully, then persist the turn log with bounded
// retries. Idempotent; concurrent stops never put a second persistence
// request in flight.
func (l *Live) Stop(ctx context.Context, reports repositories.ReportRepository) (*entities.SessionReport, error) {
	l.finalizeMu.Lock()
	if l.finalized {
		report := l.fallback
		l.finalizeMu.Unlock()
		return report, nil
	}
	if l.finalizing {
		report := l.fallback
		l.finalizeMu.Unlock()
		return report, nil
	}
	l.finalizing = true
	l.finalizeMu.Unlock()

	defer func() {
		l.finalizeMu.Lock()
		l.finalizing = false
		l.finalizeMu.Unlock()
	}()

	l.mu.Lock()
	wasLive := l.state.live()
	if wasLive {
		l.state = StateStopping
	}
	conn := l.conn
	startedAt := l.startedAt
	l.mu.Unlock()

	// user-perceived latency first: local resources down before anything else
	l.coach.Stop()
	if l.capture != nil {
		l.capture.stop()
	}
	if l.playback != nil {
		l.playback.stop()
	}

	if conn != nil {
		if err := conn.End(); err != nil && l.logger != nil {
			l.logger.Debug("graceful transport end failed", zap.Error(err))
		}
	}
	l.release()

	l.mu.Lock()
	if l.state == StateStopping {
		l.state = StateIdle
	}
	l.mu.Unlock()

	report := l.buildReport(startedAt)

	// keep the snapshot before attempting the durable write, so a report
	// view can render even if the write never lands
	l.finalizeMu.Lock()
	l.fallback = report
	l.finalizeMu.Unlock()

	if err := l.persist(ctx, reports, report); err != nil {
		if l.logger != nil {
			l.logger.Error("❌ Report persistence failed",
				zap.String("session_id", l.id.String()),
				zap.Error(err))
		}
		return report, fmt.Errorf("persist session report: %w", err)
	}

	l.finalizeMu.Lock()
	l.finalized = true
	l.finalizeMu.Unlock()

	if l.logger != nil {
		l.logger.Info("✅ Session finalized",
			zap.String("session_id", l.id.String()),
			zap.Int("turns", len(report.Turns)))
	}
	return report, nil
}

// RetryPersist re-attempts the durable write of the fallback snapshot after
// a failed finalize.
func (l *Live) RetryPersist(ctx context.Context, reports repositories.ReportRepository) (*entities.SessionReport, error) {
	l.finalizeMu.Lock()
	report := l.fallback
	alreadyDone := l.finalized
	l.finalizeMu.Unlock()

	if report == nil {
		return nil, fmt.Errorf("no finalized snapshot to persist")
	}
	if alreadyDone {
		return report, nil
	}

	if err := l.persist(ctx, reports, report); err != nil {
		return report, fmt.Errorf("persist session report: %w", err)
	}

	l.finalizeMu.Lock()
	l.finalized = true
	l.finalizeMu.Unlock()
	return report, nil
}

// Fallback returns the local report snapshot, if finalize has run
func (l *Live) Fallback() *entities.SessionReport {
	l.finalizeMu.Lock()
	defer l.finalizeMu.Unlock()
	return l.fallback
}

func (l *Live) buildReport(startedAt time.Time) *entities.SessionReport {
	stoppedAt := time.Now()
	if startedAt.IsZero() {
		startedAt = stoppedAt
	}
	return &entities.SessionReport{
		SessionID:       l.id,
		ProjectID:       l.projectID,
		StartedAt:       startedAt.UnixMilli(),
		StoppedAt:       stoppedAt.UnixMilli(),
		DurationMs:      stoppedAt.UnixMilli() - startedAt.UnixMilli(),
		PersonaSnapshot: l.snapshot,
		Turns:           l.Turns(),
	}
}

// persist writes the report with bounded attempts, each under its own
// timeout, with a pause between attempts.
func (l *Live) persist(ctx context.Context, reports repositories.ReportRepository, report *entities.SessionReport) error {
	attempts := l.cfg.FinalizeAttempts
	if attempts < 1 {
		attempts = 1
	}
	timeout := l.cfg.FinalizeTimeout
	if timeout <= 0 {
		timeout = 2500 * time.Millisecond
	}

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return reports.Save(attemptCtx, report)
	}

	policy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(l.cfg.FinalizeBackoff),
		uint64(attempts-1),
	)
	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}
