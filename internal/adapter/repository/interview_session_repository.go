package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// InterviewSessionRepository implements the interview session repository interface using GORM
type InterviewSessionRepository struct {
	db *gorm.DB
}

// NewInterviewSessionRepository creates a new interview session repository
func NewInterviewSessionRepository(db *gorm.DB) *InterviewSessionRepository {
	return &InterviewSessionRepository{
		db: db,
	}
}

// Create creates a new interview session
func (r *InterviewSessionRepository) Create(ctx context.Context, session *entities.InterviewSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create interview session: %w", err)
	}
	return nil
}

// FindByID finds an interview session by ID
func (r *InterviewSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewSession, error) {
	var session entities.InterviewSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find interview session by ID: %w", err)
	}
	return &session, nil
}

// FindByProjectID finds all interview sessions for a project
func (r *InterviewSessionRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entities.InterviewSession, error) {
	var sessions []*entities.InterviewSession
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to find interview sessions by project ID: %w", err)
	}
	return sessions, nil
}

// UpdateStatus transitions a session to a new status
func (r *InterviewSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.SessionStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.InterviewSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

// MarkStarted records the moment the session went live
func (r *InterviewSessionRepository) MarkStarted(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.InterviewSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.SessionStatusLive,
			"started_at": startedAt,
			"last_error": nil,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to mark session started: %w", err)
	}
	return nil
}

// MarkStopped records the moment the session ended and its final status
func (r *InterviewSessionRepository) MarkStopped(ctx context.Context, id uuid.UUID, stoppedAt time.Time, status entities.SessionStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.InterviewSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"stopped_at": stoppedAt,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to mark session stopped: %w", err)
	}
	return nil
}

// MarkFailed records a terminal failure with its cause
func (r *InterviewSessionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.InterviewSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.SessionStatusFailed,
			"last_error": reason,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to mark session failed: %w", err)
	}
	return nil
}
