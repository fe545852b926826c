package presenter

import (
	"github.com/hoangnam-dev/persona-interview/internal/adapter/dto/persona"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// ToPersonaResponse converts a Persona entity to PersonaResponse DTO
func ToPersonaResponse(p *entities.Persona) *persona.PersonaResponse {
	if p == nil {
		return nil
	}
	return &persona.PersonaResponse{
		ID:          p.ID.String(),
		ProjectID:   p.ProjectID.String(),
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		Occupation:  p.Occupation,
		Personality: p.Personality,
		TechComfort: p.TechComfort,
		PainPoints:  p.PainPoints,
		Traits:      p.Traits,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToPersonaListResponse converts a slice of Persona entities
func ToPersonaListResponse(personas []*entities.Persona) *persona.PersonaListResponse {
	responses := make([]*persona.PersonaResponse, len(personas))
	for i, p := range personas {
		responses[i] = ToPersonaResponse(p)
	}
	return &persona.PersonaListResponse{
		Personas: responses,
		Total:    len(responses),
	}
}
