package entities

import (
	"sort"
	"strings"
)

// TurnRole identifies the speaker of a turn
type TurnRole string

const (
	RoleInterviewer TurnRole = "interviewer"
	RolePersona     TurnRole = "persona"
)

// EmotionScore is one prosody/emotion signal attached to a turn
type EmotionScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Turn is one utterance in the session turn log. Turns are append-only and
// ordered by insertion, not by timestamp; At is an approximate wall-clock
// position in milliseconds.
type Turn struct {
	Role     TurnRole       `json:"role"`
	Text     string         `json:"text"`
	At       int64          `json:"at"`
	Emotions []EmotionScore `json:"emotions,omitempty"`
}

// IsQuestion reports whether the utterance ends in a question mark
func (t Turn) IsQuestion() bool {
	return strings.HasSuffix(strings.TrimSpace(t.Text), "?")
}

// TopEmotions reduces an emotion vector to the strongest max entries,
// deduplicated by name keeping the higher score, ordered highest first.
func TopEmotions(raw []EmotionScore, max int) []EmotionScore {
	if len(raw) == 0 || max <= 0 {
		return nil
	}

	best := make(map[string]float64, len(raw))
	order := make([]string, 0, len(raw))
	for _, e := range raw {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		if prev, seen := best[name]; !seen {
			best[name] = e.Score
			order = append(order, name)
		} else if e.Score > prev {
			best[name] = e.Score
		}
	}
	if len(order) == 0 {
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return best[order[i]] > best[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}

	out := make([]EmotionScore, 0, len(order))
	for _, name := range order {
		out = append(out, EmotionScore{Name: name, Score: best[name]})
	}
	return out
}
