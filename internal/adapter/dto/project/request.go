package project

// CreateProjectRequest represents the request to create a research project
type CreateProjectRequest struct {
	Name     string                 `json:"name" validate:"required,min=1,max=255"`
	Goal     string                 `json:"goal,omitempty" validate:"omitempty,max=2000"`
	Audience string                 `json:"audience,omitempty" validate:"omitempty,max=2000"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Name     *string                `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Goal     *string                `json:"goal,omitempty" validate:"omitempty,max=2000"`
	Audience *string                `json:"audience,omitempty" validate:"omitempty,max=2000"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}
