package sensitivity

import (
	"strings"

	"github.com/hoangnam-dev/persona-interview/internal/usecase/persona"
)

// Level is the coarse disclosure risk class of one interviewer utterance
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Score is the per-utterance risk assessment. Ephemeral; only its rendered
// guidance and hesitation delay leave this package.
type Score struct {
	Level               Level
	Risk                float64
	HesitationMs        int
	MaxSentences        int
	DiscloseProbability float64
	MatchedKeys         []string
}

var specificSignals = []struct {
	key      string
	keywords []string
}{
	{"school", []string{"school", "university", "college"}},
	{"employer", []string{"company", "employer"}},
	{"address", []string{"address"}},
	{"email", []string{"email"}},
	{"phone", []string{"phone"}},
}

var interrogatives = []string{"which", "what", "when", "where", "who"}

// matchesBoundary checks a boundary topic against the utterance. Multi-word
// boundaries like "exact address" hit on their topic word alone, so "home
// address" still counts as an address boundary.
func matchesBoundary(lower, boundary string) bool {
	b := strings.ToLower(boundary)
	if strings.Contains(lower, b) {
		return true
	}
	words := strings.Fields(b)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if w == "exact" || w == "name" {
			continue
		}
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Evaluate scores a raw interviewer utterance against the persona's knobs
// and the number of interviewer turns seen so far. Deterministic, no side
// effects.
func Evaluate(utterance string, knobs persona.Knobs, turnsSeen int) Score {
	lower := strings.ToLower(utterance)

	risk := 0.0
	var matched []string

	for _, boundary := range knobs.Boundaries {
		if matchesBoundary(lower, boundary) {
			risk += 2.0
			matched = append(matched, boundary)
			break
		}
	}

	for _, sig := range specificSignals {
		for _, kw := range sig.keywords {
			if strings.Contains(lower, kw) {
				risk += 0.5
				matched = append(matched, sig.key)
				break
			}
		}
	}
	for _, word := range interrogatives {
		if strings.Contains(lower, word) {
			risk += 0.5
			break
		}
	}
	if strings.ContainsAny(lower, "0123456789") {
		risk += 0.5
	}
	if strings.Contains(lower, "why") {
		risk += 0.3
	}

	warmup := knobs.TrustWarmupTurns
	if warmup < 1 {
		warmup = 1
	}
	trustFactor := clamp01(float64(turnsSeen) / float64(warmup))
	risk -= 0.8 * trustFactor * knobs.Openness
	risk += 0.5 * knobs.Cautiousness

	if risk < 0 {
		risk = 0
	}
	if risk > 4 {
		risk = 4
	}

	level := LevelLow
	switch {
	case risk >= 2.5:
		level = LevelHigh
	case risk >= 1.2:
		level = LevelMedium
	}

	base := 200.0
	maxSentences := 4
	switch level {
	case LevelMedium:
		base = 500.0
		maxSentences = 3
	case LevelHigh:
		base = 900.0
		maxSentences = 2
	}

	return Score{
		Level:               level,
		Risk:                risk,
		HesitationMs:        int(base * (0.7 + 0.6*knobs.Cautiousness)),
		MaxSentences:        maxSentences,
		DiscloseProbability: clamp01(0.8 - 0.15*risk + 0.15*knobs.Openness + 0.15*trustFactor),
		MatchedKeys:         matched,
	}
}
