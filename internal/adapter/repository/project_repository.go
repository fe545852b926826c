package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// ProjectRepository implements the project repository interface using GORM
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *entities.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// FindByID finds a project by ID
func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	var project entities.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find project by ID: %w", err)
	}
	return &project, nil
}

// List returns all projects ordered by creation time
func (r *ProjectRepository) List(ctx context.Context) ([]*entities.Project, error) {
	var projects []*entities.Project
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Update updates a project
func (r *ProjectRepository) Update(ctx context.Context, project *entities.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// Archive marks a project as archived
func (r *ProjectRepository) Archive(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.ProjectStatusArchived,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to archive project: %w", err)
	}
	return nil
}
