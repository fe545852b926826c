package coach

import (
	"strings"
	"time"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

var rapportMarkers = []string{"thank you", "thanks", "appreciate", "that makes sense", "interesting"}

var personalProbes = []string{"salary", "income", "money", "age", "married", "religion", "address", "medical"}

var interrogativeWords = []string{"which", "what", "when", "where", "who", "how", "why"}

var factCheckPhrases = []string{"are you sure", "really?", "is that true", "you said earlier", "didn't you say"}

var hostileWords = []string{"stupid", "wrong", "ridiculous", "lying", "nonsense", "waste"}

var openPrefixes = []string{"how", "what", "why", "describe", "tell me", "walk me"}

// Classify maps an interviewer utterance to exactly one coaching tip.
// Used when the advisory service is unreachable or has nothing to say.
// Categories are checked in a fixed order and the first hit wins.
func Classify(utterance string) entities.CoachTip {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	now := time.Now().UnixMilli()

	for _, m := range rapportMarkers {
		if strings.Contains(lower, m) {
			return entities.CoachTip{
				Label:    entities.CoachLabelRapport,
				Message:  "Nice rapport building. Acknowledgements like this keep the participant talking.",
				Severity: entities.CoachSeverityInfo,
				At:       now,
			}
		}
	}

	if containsAny(lower, personalProbes) && containsAny(lower, interrogativeWords) {
		return entities.CoachTip{
			Label:      entities.CoachLabelTooPersonal,
			Message:    "That question probes personal territory directly.",
			Suggestion: "Soften it or explain why you are asking before pressing for details.",
			Severity:   entities.CoachSeverityImportant,
			At:         now,
		}
	}

	if containsAny(lower, factCheckPhrases) {
		return entities.CoachTip{
			Label:      entities.CoachLabelFactCheck,
			Message:    "You are challenging the participant's account.",
			Suggestion: "Ask them to walk through it again instead of disputing it.",
			Severity:   entities.CoachSeverityNudge,
			At:         now,
		}
	}

	if isDoubleBarreled(lower) {
		return entities.CoachTip{
			Label:      entities.CoachLabelDoubleBarreled,
			Message:    "That was two questions in one.",
			Suggestion: "Split it up; participants usually answer only the last part.",
			Severity:   entities.CoachSeverityNudge,
			At:         now,
		}
	}

	if containsAny(lower, hostileWords) {
		return entities.CoachTip{
			Label:      entities.CoachLabelHostileTone,
			Message:    "The wording may come across as confrontational.",
			Suggestion: "Stay neutral; curiosity gets better answers than pressure.",
			Severity:   entities.CoachSeverityImportant,
			At:         now,
		}
	}

	for _, p := range openPrefixes {
		if strings.HasPrefix(lower, p) {
			return entities.CoachTip{
				Label:    entities.CoachLabelOpenQuestion,
				Message:  "Good open question. Leave room for silence after the answer.",
				Severity: entities.CoachSeverityInfo,
				At:       now,
			}
		}
	}

	return entities.CoachTip{
		Label:      entities.CoachLabelGeneric,
		Message:    "Consider probing deeper.",
		Suggestion: "A follow-up like \"can you tell me more about that?\" often surfaces the real story.",
		Severity:   entities.CoachSeverityInfo,
		At:         now,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// isDoubleBarreled detects compound questions: two question marks, or an
// "and" joining two interrogative clauses.
func isDoubleBarreled(lower string) bool {
	if strings.Count(lower, "?") >= 2 {
		return true
	}
	if !strings.Contains(lower, " and ") || !strings.HasSuffix(strings.TrimSpace(lower), "?") {
		return false
	}
	parts := strings.SplitN(lower, " and ", 2)
	return containsAny(parts[0], interrogativeWords) && containsAny(parts[1], interrogativeWords)
}
