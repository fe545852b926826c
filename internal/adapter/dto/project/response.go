package project

import "time"

// ProjectResponse represents a project in responses
type ProjectResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Goal      string                 `json:"goal,omitempty"`
	Audience  string                 `json:"audience,omitempty"`
	Status    string                 `json:"status"`
	Settings  map[string]interface{} `json:"settings,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// ProjectListResponse represents a list of projects
type ProjectListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
	Total    int                `json:"total"`
}
