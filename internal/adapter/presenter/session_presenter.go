package presenter

import (
	"github.com/hoangnam-dev/persona-interview/internal/adapter/dto/interview"
	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// ToSessionResponse converts an InterviewSession entity to SessionResponse DTO
func ToSessionResponse(s *entities.InterviewSession) *interview.SessionResponse {
	if s == nil {
		return nil
	}
	response := &interview.SessionResponse{
		ID:        s.ID.String(),
		ProjectID: s.ProjectID.String(),
		PersonaID: s.PersonaID.String(),
		Status:    string(s.Status),
		StartedAt: s.StartedAt,
		StoppedAt: s.StoppedAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.LastError != nil {
		response.LastError = *s.LastError
	}
	return response
}

// ToSessionListResponse converts a slice of InterviewSession entities
func ToSessionListResponse(sessions []*entities.InterviewSession) *interview.SessionListResponse {
	responses := make([]*interview.SessionResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = ToSessionResponse(s)
	}
	return &interview.SessionListResponse{
		Sessions: responses,
		Total:    len(responses),
	}
}
