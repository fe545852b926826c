package sensitivity

import (
	"fmt"
	"strings"
)

// guidancePrefix marks out-of-band prefaces so ingestion can drop them
// before they become visible turns.
const guidancePrefix = "[guidance]"

// IsGuidance reports whether a text payload is an internal guidance preface
func IsGuidance(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), guidancePrefix)
}

// BuildGuidance renders the sensitivity directive plus per-topic fact
// consistency fragments into one preface string. Returns "" when there is
// nothing to instruct.
func BuildGuidance(utterance string, score Score, store *FactStore) string {
	var parts []string

	switch score.Level {
	case LevelHigh:
		parts = append(parts, fmt.Sprintf(
			"This question touches a sensitive topic. Be reluctant, deflect politely, and answer in at most %d sentences.",
			score.MaxSentences))
	case LevelMedium:
		parts = append(parts, fmt.Sprintf(
			"Answer carefully and keep it to at most %d sentences.",
			score.MaxSentences))
	default:
		if score.MaxSentences > 0 {
			parts = append(parts, fmt.Sprintf("Answer naturally in at most %d sentences.", score.MaxSentences))
		}
	}

	if store != nil {
		for _, topic := range TopicsIn(utterance) {
			if value, ok := store.Get(topic); ok {
				parts = append(parts, fmt.Sprintf("Previously you said your %s was: %s", topic, value))
			} else {
				parts = append(parts, fmt.Sprintf(
					"You have not stated a %s before. If asked, admit you are not sure rather than inventing one.", topic))
			}
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return guidancePrefix + " " + strings.Join(parts, " ")
}
