package presenter

import (
	"encoding/json"

	"github.com/hoangnam-dev/persona-interview/internal/adapter/dto/project"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// ToProjectResponse converts a Project entity to ProjectResponse DTO
func ToProjectResponse(p *entities.Project) *project.ProjectResponse {
	if p == nil {
		return nil
	}

	var settings map[string]interface{}
	if p.Settings != nil {
		json.Unmarshal(p.Settings, &settings)
	}

	return &project.ProjectResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Goal:      p.Goal,
		Audience:  p.Audience,
		Status:    string(p.Status),
		Settings:  settings,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToProjectListResponse converts a slice of Project entities
func ToProjectListResponse(projects []*entities.Project) *project.ProjectListResponse {
	responses := make([]*project.ProjectResponse, len(projects))
	for i, p := range projects {
		responses[i] = ToProjectResponse(p)
	}
	return &project.ProjectListResponse{
		Projects: responses,
		Total:    len(responses),
	}
}
