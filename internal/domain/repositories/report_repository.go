package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// ReportRepository defines the interface for session report data access
type ReportRepository interface {
	// Save persists a report, replacing any previous report for the session
	Save(ctx context.Context, report *entities.SessionReport) error

	// FindBySessionID finds the report of a finished session
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.SessionReport, error)

	// FindByProjectID finds all reports for sessions of a project
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entities.SessionReport, error)
}
