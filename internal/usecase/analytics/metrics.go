package analytics

import (
	"math"
	"strings"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

const (
	interruptionGapMs    = 2000
	shortAnswerChars     = 80
	missedOpportunityCap = 3
)

// Metrics summarizes interviewer technique over a finished turn log.
// All derivations are pure functions of the turns.
type Metrics struct {
	InterviewerTalkPct  int      `json:"interviewerTalkPct"`
	PersonaTalkPct      int      `json:"personaTalkPct"`
	OpenQuestions       int      `json:"openQuestions"`
	ClosedQuestions     int      `json:"closedQuestions"`
	MissedOpportunities []string `json:"missedOpportunities,omitempty"`
	InterruptionsPerMin float64  `json:"interruptionsPerMin"`
	FollowUpDepth       int      `json:"followUpDepth"`
	Summary             string   `json:"summary"`
}

var openQuestionPrefixes = []string{"how", "what", "why", "describe", "tell me", "walk me"}

// IsOpenQuestion reports whether an interviewer utterance is an open
// question: it ends in "?" and starts with an open prefix.
func IsOpenQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasSuffix(trimmed, "?") {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, p := range openQuestionPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func isQuestion(text string) bool {
	return strings.HasSuffix(strings.TrimSpace(text), "?")
}

// Compute derives all metrics from a finished turn log. durationMs bounds
// the interruption rate; a non-positive duration falls back to the span of
// the turn timestamps.
func Compute(turns []entities.Turn, durationMs int64) Metrics {
	m := Metrics{}

	m.InterviewerTalkPct, m.PersonaTalkPct = talkRatio(turns)
	m.OpenQuestions, m.ClosedQuestions = questionCounts(turns)
	m.MissedOpportunities = missedOpportunities(turns)
	m.InterruptionsPerMin = interruptionRate(turns, durationMs)
	m.FollowUpDepth = followUpDepth(turns)
	m.Summary = summarize(m)

	return m
}

// talkRatio splits text volume by character count. Percentages always sum
// to 100 when anyone spoke.
func talkRatio(turns []entities.Turn) (interviewer, persona int) {
	var iChars, pChars int
	for _, t := range turns {
		n := len(strings.TrimSpace(t.Text))
		if t.Role == entities.RoleInterviewer {
			iChars += n
		} else {
			pChars += n
		}
	}
	total := iChars + pChars
	if total == 0 {
		return 0, 0
	}
	interviewer = int(math.Round(float64(iChars) / float64(total) * 100))
	return interviewer, 100 - interviewer
}

func questionCounts(turns []entities.Turn) (open, closed int) {
	for _, t := range turns {
		if t.Role != entities.RoleInterviewer || !isQuestion(t.Text) {
			continue
		}
		if IsOpenQuestion(t.Text) {
			open++
		} else {
			closed++
		}
	}
	return open, closed
}

// missedOpportunities finds open questions answered briefly with no open
// follow-up, capped to a few examples.
func missedOpportunities(turns []entities.Turn) []string {
	var missed []string
	for i := 0; i+1 < len(turns) && len(missed) < missedOpportunityCap; i++ {
		if turns[i].Role != entities.RoleInterviewer || !IsOpenQuestion(turns[i].Text) {
			continue
		}
		answer := turns[i+1]
		if answer.Role != entities.RolePersona || len(strings.TrimSpace(answer.Text)) >= shortAnswerChars {
			continue
		}
		if i+2 < len(turns) && turns[i+2].Role == entities.RoleInterviewer && IsOpenQuestion(turns[i+2].Text) {
			continue
		}
		missed = append(missed, strings.TrimSpace(turns[i].Text))
	}
	return missed
}

// interruptionRate counts interviewer turns arriving implausibly soon after
// a persona turn, per minute of session time.
func interruptionRate(turns []entities.Turn, durationMs int64) float64 {
	interruptions := 0
	for i := 1; i < len(turns); i++ {
		if turns[i].Role != entities.RoleInterviewer || turns[i-1].Role != entities.RolePersona {
			continue
		}
		gap := turns[i].At - turns[i-1].At
		if gap >= 0 && gap < interruptionGapMs {
			interruptions++
		}
	}
	if interruptions == 0 {
		return 0
	}

	if durationMs <= 0 && len(turns) > 1 {
		durationMs = turns[len(turns)-1].At - turns[0].At
	}
	if durationMs <= 0 {
		return 0
	}
	minutes := float64(durationMs) / 60000.0
	if minutes < 1 {
		minutes = 1
	}
	return float64(interruptions) / minutes
}

// followUpDepth finds the longest run of open question, answer, open
// question chains.
func followUpDepth(turns []entities.Turn) int {
	best, run := 0, 0
	for i := 0; i < len(turns); i++ {
		if turns[i].Role != entities.RoleInterviewer || !IsOpenQuestion(turns[i].Text) {
			continue
		}
		answered := i+1 < len(turns) && turns[i+1].Role == entities.RolePersona
		if !answered {
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
		// the chain continues only if the next interviewer turn is open
		if i+2 < len(turns) && !(turns[i+2].Role == entities.RoleInterviewer && IsOpenQuestion(turns[i+2].Text)) {
			run = 0
		}
	}
	return best
}

// summarize picks the single weakest technique metric and recommends
// improving it. Each metric is normalized to [0,1], higher is better.
func summarize(m Metrics) string {
	questions := m.OpenQuestions + m.ClosedQuestions
	openShare := 1.0
	if questions > 0 {
		openShare = float64(m.OpenQuestions) / float64(questions)
	}

	listening := 1.0
	if m.InterviewerTalkPct+m.PersonaTalkPct > 0 {
		listening = float64(m.PersonaTalkPct) / 100.0
	}

	calm := 1.0 - clamp01(m.InterruptionsPerMin/2.0)
	depth := clamp01(float64(m.FollowUpDepth) / 3.0)
	probing := 1.0 - clamp01(float64(len(m.MissedOpportunities))/float64(missedOpportunityCap))

	type scored struct {
		score   float64
		message string
	}
	candidates := []scored{
		{openShare, "Try rephrasing closed questions as open ones; they invite longer, richer answers."},
		{listening, "You did most of the talking; leave more room for the participant to speak."},
		{calm, "You interrupted often; let the participant finish before jumping in."},
		{depth, "Follow up on answers with another open question to build depth."},
		{probing, "Several short answers went unprobed; ask for more detail when an answer feels thin."},
	}

	weakest := candidates[0]
	for _, c := range candidates[1:] {
		if c.score < weakest.score {
			weakest = c
		}
	}
	return weakest.message
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
