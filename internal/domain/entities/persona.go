package entities

import (
	"time"

	"github.com/google/uuid"
)

// Persona is the static description of a synthetic interview subject.
// Behavior parameters are derived from these attributes at session start,
// never stored back.
type Persona struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID   uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Age         *int      `json:"age,omitempty"`
	Gender      string    `json:"gender,omitempty" gorm:"type:varchar(20)"`
	Occupation  string    `json:"occupation,omitempty" gorm:"type:varchar(255)"`
	Personality string    `json:"personality,omitempty" gorm:"type:text"` // free text
	TechComfort string    `json:"tech_comfort,omitempty" gorm:"type:text"`
	PainPoints  []string  `json:"pain_points,omitempty" gorm:"type:jsonb;serializer:json"`
	Traits      []string  `json:"traits,omitempty" gorm:"type:jsonb;serializer:json"`
	Notes       string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Persona) TableName() string {
	return "personas"
}

// NewPersona creates a new persona
func NewPersona(projectID uuid.UUID, name string) *Persona {
	return &Persona{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// PersonaSnapshot is the immutable persona view frozen into a session report
type PersonaSnapshot struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Age         *int      `json:"age,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Occupation  string    `json:"occupation,omitempty"`
	Personality string    `json:"personality,omitempty"`
	TechComfort string    `json:"techComfort,omitempty"`
	PainPoints  []string  `json:"painPoints,omitempty"`
	Traits      []string  `json:"traits,omitempty"`
}

// Snapshot freezes the persona attributes relevant to a report
func (p *Persona) Snapshot() PersonaSnapshot {
	if p == nil {
		return PersonaSnapshot{}
	}
	return PersonaSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		Occupation:  p.Occupation,
		Personality: p.Personality,
		TechComfort: p.TechComfort,
		PainPoints:  p.PainPoints,
		Traits:      p.Traits,
	}
}
