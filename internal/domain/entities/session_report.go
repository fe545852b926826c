package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionReport is the single durable artifact of a finished session
type SessionReport struct {
	SessionID       uuid.UUID       `json:"session_id" gorm:"type:uuid;primary_key"`
	ProjectID       uuid.UUID       `json:"project_id" gorm:"type:uuid;not null;index"`
	StartedAt       int64           `json:"started_at"` // unix millis
	StoppedAt       int64           `json:"stopped_at"` // unix millis
	DurationMs      int64           `json:"duration_ms"`
	PersonaSnapshot PersonaSnapshot `json:"persona_snapshot" gorm:"type:jsonb;serializer:json"`
	Turns           []Turn          `json:"turns" gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SessionReport) TableName() string {
	return "session_reports"
}

// ReportMeta is the wire shape of report metadata
type ReportMeta struct {
	ID              uuid.UUID       `json:"id"`
	StartedAt       int64           `json:"startedAt"`
	StoppedAt       int64           `json:"stoppedAt"`
	DurationMs      int64           `json:"durationMs"`
	PersonaSnapshot PersonaSnapshot `json:"personaSnapshot"`
}

// ReportTurn is the wire shape of one persisted turn
type ReportTurn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
	At   int64    `json:"at"`
}

// ReportDocument is the report as served to clients, field naming fixed
type ReportDocument struct {
	Meta  ReportMeta   `json:"meta"`
	Turns []ReportTurn `json:"turns"`
}

// Document converts the stored report into its wire shape, preserving order
func (r *SessionReport) Document() ReportDocument {
	doc := ReportDocument{
		Meta: ReportMeta{
			ID:              r.SessionID,
			StartedAt:       r.StartedAt,
			StoppedAt:       r.StoppedAt,
			DurationMs:      r.DurationMs,
			PersonaSnapshot: r.PersonaSnapshot,
		},
		Turns: make([]ReportTurn, 0, len(r.Turns)),
	}
	for _, t := range r.Turns {
		doc.Turns = append(doc.Turns, ReportTurn{Role: t.Role, Text: t.Text, At: t.At})
	}
	return doc
}
