package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// InterviewSessionRepository defines the interface for interview session data access
type InterviewSessionRepository interface {
	// Create creates a new interview session
	Create(ctx context.Context, session *entities.InterviewSession) error

	// FindByID finds an interview session by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewSession, error)

	// FindByProjectID finds all interview sessions for a project
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entities.InterviewSession, error)

	// UpdateStatus transitions a session to a new status
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.SessionStatus) error

	// MarkStarted records the moment the session went live
	MarkStarted(ctx context.Context, id uuid.UUID, startedAt time.Time) error

	// MarkStopped records the moment the session ended and its final status
	MarkStopped(ctx context.Context, id uuid.UUID, stoppedAt time.Time, status entities.SessionStatus) error

	// MarkFailed records a terminal failure with its cause
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}
