package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProjectStatus represents the lifecycle of a research project
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Project is a user-research project grouping personas and sessions
type Project struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Goal        string         `json:"goal,omitempty" gorm:"type:text"`
	Audience    string         `json:"audience,omitempty" gorm:"type:text"`
	Status      ProjectStatus  `json:"status" gorm:"type:varchar(20);default:'active'"`
	Settings    datatypes.JSON `json:"settings,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new project
func NewProject(name, goal string) *Project {
	return &Project{
		ID:        uuid.New(),
		Name:      name,
		Goal:      goal,
		Status:    ProjectStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
