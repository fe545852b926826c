package interview

// CreateSessionRequest represents the request to create an interview session
type CreateSessionRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	PersonaID string `json:"persona_id" validate:"required,uuid"`
}
