package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// PersonaRepository implements the persona repository interface using GORM
type PersonaRepository struct {
	db *gorm.DB
}

// NewPersonaRepository creates a new persona repository
func NewPersonaRepository(db *gorm.DB) *PersonaRepository {
	return &PersonaRepository{
		db: db,
	}
}

// Create creates a new persona
func (r *PersonaRepository) Create(ctx context.Context, persona *entities.Persona) error {
	if err := r.db.WithContext(ctx).Create(persona).Error; err != nil {
		return fmt.Errorf("failed to create persona: %w", err)
	}
	return nil
}

// FindByID finds a persona by ID
func (r *PersonaRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Persona, error) {
	var persona entities.Persona
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&persona).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find persona by ID: %w", err)
	}
	return &persona, nil
}

// FindByProjectID finds all personas belonging to a project
func (r *PersonaRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entities.Persona, error) {
	var personas []*entities.Persona
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&personas).Error; err != nil {
		return nil, fmt.Errorf("failed to find personas by project ID: %w", err)
	}
	return personas, nil
}

// Update updates a persona
func (r *PersonaRepository) Update(ctx context.Context, persona *entities.Persona) error {
	if err := r.db.WithContext(ctx).Save(persona).Error; err != nil {
		return fmt.Errorf("failed to update persona: %w", err)
	}
	return nil
}

// Delete removes a persona
func (r *PersonaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entities.Persona{}).Error; err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	return nil
}
