package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// ReportRepository implements the session report repository interface using GORM
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{
		db: db,
	}
}

// Save persists a report, replacing any previous report for the session
func (r *ReportRepository) Save(ctx context.Context, report *entities.SessionReport) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).
		Create(report).Error; err != nil {
		return fmt.Errorf("failed to save session report: %w", err)
	}
	return nil
}

// FindBySessionID finds the report of a finished session
func (r *ReportRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entities.SessionReport, error) {
	var report entities.SessionReport
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&report).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find report by session ID: %w", err)
	}
	return &report, nil
}

// FindByProjectID finds all reports for sessions of a project
func (r *ReportRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entities.SessionReport, error) {
	var reports []*entities.SessionReport
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("stopped_at DESC").
		Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to find reports by project ID: %w", err)
	}
	return reports, nil
}
