package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *entities.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Project, error)

	// List returns all projects ordered by creation time
	List(ctx context.Context) ([]*entities.Project, error)

	// Update updates a project
	Update(ctx context.Context, project *entities.Project) error

	// Archive marks a project as archived
	Archive(ctx context.Context, id uuid.UUID) error
}
