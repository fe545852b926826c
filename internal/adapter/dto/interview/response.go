package interview

import "time"

// SessionResponse represents an interview session record in responses
type SessionResponse struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	PersonaID string     `json:"persona_id"`
	Status    string     `json:"status"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SessionListResponse represents a list of session records
type SessionListResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int                `json:"total"`
}

// StartSessionResponse is returned after a session goes live
type StartSessionResponse struct {
	SessionID  string `json:"session_id"`
	Credential string `json:"credential"`
	VoiceID    string `json:"voice_id"`
	State      string `json:"state"`
}

// AudioChunkResponse carries one persona audio chunk to the client
type AudioChunkResponse struct {
	AudioB64 string `json:"audio_b64"`
	Encoding string `json:"encoding"`
}
