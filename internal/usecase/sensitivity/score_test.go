package sensitivity

import (
	"strings"
	"testing"

	"github.com/hoangnam-dev/persona-interview/internal/usecase/persona"
)

func defaultKnobs() persona.Knobs {
	return persona.Derive(nil)
}

func TestEvaluate_HighRiskAddressAndSchool(t *testing.T) {
	k := defaultKnobs()
	s := Evaluate("What is your home address and which school do you attend?", k, 0)

	if s.Level != LevelHigh {
		t.Fatalf("expected high level got %s (risk %v)", s.Level, s.Risk)
	}
	if s.MaxSentences != 2 {
		t.Fatalf("expected max 2 sentences got %d", s.MaxSentences)
	}
	if s.Risk < 2.5 {
		t.Fatalf("expected risk >= 2.5 got %v", s.Risk)
	}
}

func TestEvaluate_LowRiskSmallTalk(t *testing.T) {
	k := defaultKnobs()
	s := Evaluate("Tell me about your morning routine.", k, 5)

	if s.Level != LevelLow {
		t.Fatalf("expected low level got %s (risk %v)", s.Level, s.Risk)
	}
	if s.MaxSentences != 4 {
		t.Fatalf("expected max 4 sentences got %d", s.MaxSentences)
	}
}

func TestEvaluate_MonotonicInTrust(t *testing.T) {
	k := defaultKnobs()
	utterance := "What company do you work for?"

	levelRank := map[Level]int{LevelLow: 0, LevelMedium: 1, LevelHigh: 2}

	prev := Evaluate(utterance, k, 0)
	for turns := 1; turns <= k.TrustWarmupTurns; turns++ {
		cur := Evaluate(utterance, k, turns)
		if levelRank[cur.Level] > levelRank[prev.Level] {
			t.Fatalf("level rose with trust: turns=%d %s -> %s", turns, prev.Level, cur.Level)
		}
		if cur.DiscloseProbability < prev.DiscloseProbability {
			t.Fatalf("disclose probability fell with trust: turns=%d %v -> %v",
				turns, prev.DiscloseProbability, cur.DiscloseProbability)
		}
		prev = cur
	}
}

func TestEvaluate_HesitationScalesWithLevel(t *testing.T) {
	k := defaultKnobs()

	low := Evaluate("Tell me a story.", k, 5)
	high := Evaluate("What is your exact address and income?", k, 0)

	if low.Level != LevelLow || high.Level != LevelHigh {
		t.Fatalf("unexpected levels: low=%s high=%s", low.Level, high.Level)
	}
	if high.HesitationMs <= low.HesitationMs {
		t.Fatalf("expected longer hesitation for high risk: low=%d high=%d",
			low.HesitationMs, high.HesitationMs)
	}
	// base 900 scaled by 0.7 + 0.6*0.6
	if high.HesitationMs != int(900*(0.7+0.6*0.6)) {
		t.Fatalf("unexpected high hesitation %d", high.HesitationMs)
	}
}

func TestFactStore_LastWriteWins(t *testing.T) {
	fs := NewFactStore()

	fs.Extract("I work at Initech, it pays the bills.")
	if v, ok := fs.Get(FactEmployer); !ok || v != "Initech" {
		t.Fatalf("expected employer Initech got %q (ok=%v)", v, ok)
	}

	fs.Extract("Actually I work at Globex now.")
	if v, _ := fs.Get(FactEmployer); v != "Globex now" {
		t.Fatalf("expected overwrite, got %q", v)
	}
}

func TestFactStore_ExtractEmailAndPhone(t *testing.T) {
	fs := NewFactStore()
	fs.Extract("Reach me at jane.doe@example.com or +1 555-123-4567 anytime.")

	if v, ok := fs.Get(FactEmail); !ok || v != "jane.doe@example.com" {
		t.Fatalf("expected email extraction got %q (ok=%v)", v, ok)
	}
	if _, ok := fs.Get(FactPhone); !ok {
		t.Fatal("expected phone extraction")
	}
}

func TestBuildGuidance_RestatesKnownFactVerbatim(t *testing.T) {
	fs := NewFactStore()
	fs.Extract("My school is Riverdale High")

	k := defaultKnobs()
	s := Evaluate("Which school did you go to?", k, 2)
	g := BuildGuidance("Which school did you go to?", s, fs)

	if !IsGuidance(g) {
		t.Fatalf("expected guidance preface, got %q", g)
	}
	if !strings.Contains(g, "Previously you said your school was: Riverdale High") {
		t.Fatalf("guidance must restate stored value verbatim: %q", g)
	}
}

func TestBuildGuidance_UnknownFactAdmitsUncertainty(t *testing.T) {
	fs := NewFactStore()
	k := defaultKnobs()

	utterance := "What is your phone number?"
	s := Evaluate(utterance, k, 0)
	g := BuildGuidance(utterance, s, fs)

	if !strings.Contains(g, "You have not stated a phone before") {
		t.Fatalf("expected uncertainty instruction: %q", g)
	}
}
