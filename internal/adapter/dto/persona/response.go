package persona

import "time"

// PersonaResponse represents a persona in responses
type PersonaResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Age         *int      `json:"age,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Occupation  string    `json:"occupation,omitempty"`
	Personality string    `json:"personality,omitempty"`
	TechComfort string    `json:"tech_comfort,omitempty"`
	PainPoints  []string  `json:"pain_points,omitempty"`
	Traits      []string  `json:"traits,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PersonaListResponse represents a list of personas
type PersonaListResponse struct {
	Personas []*PersonaResponse `json:"personas"`
	Total    int                `json:"total"`
}
