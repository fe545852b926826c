package entities

// CoachLabel is the closed set of coaching categories
type CoachLabel string

const (
	CoachLabelRapport        CoachLabel = "rapport"
	CoachLabelTooPersonal    CoachLabel = "too_personal"
	CoachLabelFactCheck      CoachLabel = "fact_check"
	CoachLabelDoubleBarreled CoachLabel = "double_barreled"
	CoachLabelHostileTone    CoachLabel = "hostile_tone"
	CoachLabelOpenQuestion   CoachLabel = "open_question"
	CoachLabelGeneric        CoachLabel = "generic"
)

// CoachSeverity orders tips for display
type CoachSeverity string

const (
	CoachSeverityInfo      CoachSeverity = "info"
	CoachSeverityNudge     CoachSeverity = "nudge"
	CoachSeverityImportant CoachSeverity = "important"
)

// CoachTip is a single piece of live guidance for the interviewer
type CoachTip struct {
	Label      CoachLabel    `json:"label"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
	Severity   CoachSeverity `json:"severity"`
	At         int64         `json:"at"` // unix millis
}

// IsEmpty reports whether the tip carries no guidance
func (t CoachTip) IsEmpty() bool {
	return t.Message == "" && t.Suggestion == ""
}
