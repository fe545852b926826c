package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the persisted lifecycle of an interview session
type SessionStatus string

const (
	SessionStatusCreated   SessionStatus = "created"
	SessionStatusLive      SessionStatus = "live"
	SessionStatusStopping  SessionStatus = "stopping"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// InterviewSession is the backing record of one live interview.
// The live orchestration state lives in the session manager; this row only
// tracks identity, configuration and coarse status.
type InterviewSession struct {
	ID        uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID uuid.UUID     `json:"project_id" gorm:"type:uuid;not null;index"`
	PersonaID uuid.UUID     `json:"persona_id" gorm:"type:uuid;not null;index"`
	Status    SessionStatus `json:"status" gorm:"type:varchar(20);default:'created';index"`
	StartedAt *time.Time    `json:"started_at,omitempty" gorm:"type:timestamp"`
	StoppedAt *time.Time    `json:"stopped_at,omitempty" gorm:"type:timestamp"`
	LastError *string       `json:"last_error,omitempty" gorm:"type:text"`
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// NewInterviewSession creates a new session record
func NewInterviewSession(projectID, personaID uuid.UUID) *InterviewSession {
	return &InterviewSession{
		ID:        uuid.New(),
		ProjectID: projectID,
		PersonaID: personaID,
		Status:    SessionStatusCreated,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CanStart reports whether a live connection may be opened for this record
func (s *InterviewSession) CanStart() bool {
	if s == nil {
		return false
	}
	return s.Status == SessionStatusCreated || s.Status == SessionStatusFailed
}
