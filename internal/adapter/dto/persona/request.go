package persona

// CreatePersonaRequest represents the request to create a persona
type CreatePersonaRequest struct {
	ProjectID   string   `json:"project_id" validate:"required,uuid"`
	Name        string   `json:"name" validate:"required,min=1,max=255"`
	Age         *int     `json:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Gender      string   `json:"gender,omitempty" validate:"omitempty,oneof=female male nonbinary unspecified"`
	Occupation  string   `json:"occupation,omitempty" validate:"omitempty,max=255"`
	Personality string   `json:"personality,omitempty" validate:"omitempty,max=2000"`
	TechComfort string   `json:"tech_comfort,omitempty" validate:"omitempty,max=2000"`
	PainPoints  []string `json:"pain_points,omitempty" validate:"omitempty,dive,max=500"`
	Traits      []string `json:"traits,omitempty" validate:"omitempty,dive,max=255"`
	Notes       string   `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// UpdatePersonaRequest represents the request to update a persona
type UpdatePersonaRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Age         *int     `json:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Gender      *string  `json:"gender,omitempty" validate:"omitempty,oneof=female male nonbinary unspecified"`
	Occupation  *string  `json:"occupation,omitempty" validate:"omitempty,max=255"`
	Personality *string  `json:"personality,omitempty" validate:"omitempty,max=2000"`
	TechComfort *string  `json:"tech_comfort,omitempty" validate:"omitempty,max=2000"`
	PainPoints  []string `json:"pain_points,omitempty" validate:"omitempty,dive,max=500"`
	Traits      []string `json:"traits,omitempty" validate:"omitempty,dive,max=255"`
	Notes       *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
}
