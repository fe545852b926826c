package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// PersonaRepository defines the interface for persona data access
type PersonaRepository interface {
	// Create creates a new persona
	Create(ctx context.Context, persona *entities.Persona) error

	// FindByID finds a persona by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Persona, error)

	// FindByProjectID finds all personas belonging to a project
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entities.Persona, error)

	// Update updates a persona
	Update(ctx context.Context, persona *entities.Persona) error

	// Delete removes a persona
	Delete(ctx context.Context, id uuid.UUID) error
}
