package persona

import (
	"strings"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

// Personality is the normalized personality class
type Personality string

const (
	PersonalityWarm     Personality = "warm"
	PersonalityNeutral  Personality = "neutral"
	PersonalityReserved Personality = "reserved"
)

// TechFamiliarity is the normalized technology comfort class
type TechFamiliarity string

const (
	TechLow    TechFamiliarity = "low"
	TechMedium TechFamiliarity = "medium"
	TechHigh   TechFamiliarity = "high"
)

// AgeBucket groups ages into coarse speech cohorts
type AgeBucket string

const (
	BucketYouth  AgeBucket = "youth"  // <= 24
	BucketAdult  AgeBucket = "adult"  // 25-59
	BucketSenior AgeBucket = "senior" // >= 60
)

const defaultAge = 35

// TurnTaking controls floor handoff between interviewer and persona
type TurnTaking struct {
	MaxSeconds       int
	InterruptOnVoice bool
}

// Knobs are the behavior parameters driving one live session. Derived once
// at session start from the stored persona and never mutated mid-session;
// the effective trust level is computed from elapsed turns, not stored here.
type Knobs struct {
	Age              int
	Bucket           AgeBucket
	Traits           []string
	TechFamiliarity  TechFamiliarity
	Personality      Personality
	VoiceProfileID   string
	SpeechRate       float64
	TurnTaking       TurnTaking
	Openness         float64
	Cautiousness     float64
	Boundaries       []string
	TrustWarmupTurns int
}

var defaultBoundaries = []string{
	"income",
	"finances",
	"religion",
	"medical",
	"exact address",
	"school name",
	"company name",
}

// Derive computes behavior knobs from stored persona attributes. Total and
// deterministic: missing fields fall back to defaults, never an error.
func Derive(p *entities.Persona) Knobs {
	k := Knobs{
		Age:              defaultAge,
		Openness:         0.5,
		Cautiousness:     0.6,
		Boundaries:       append([]string(nil), defaultBoundaries...),
		TrustWarmupTurns: 4,
		TurnTaking: TurnTaking{
			MaxSeconds:       8,
			InterruptOnVoice: true,
		},
	}

	var personalityText, techText, gender string
	if p != nil {
		if p.Age != nil && *p.Age > 0 {
			k.Age = *p.Age
		}
		k.Traits = append([]string(nil), p.Traits...)
		personalityText = p.Personality
		techText = p.TechComfort
		gender = p.Gender
	}

	k.Bucket = bucketAge(k.Age)
	k.Personality = normalizePersonality(personalityText)
	k.TechFamiliarity = normalizeTech(techText)

	k.SpeechRate = 1.0
	if k.Bucket == BucketSenior {
		k.SpeechRate = 0.9
	}

	k.VoiceProfileID = lookupVoiceProfile(k.Bucket, k.Personality, gender)

	return k
}

func bucketAge(age int) AgeBucket {
	switch {
	case age <= 24:
		return BucketYouth
	case age >= 60:
		return BucketSenior
	default:
		return BucketAdult
	}
}

func normalizePersonality(text string) Personality {
	lower := strings.ToLower(text)
	for _, kw := range []string{"warm", "friendly", "open"} {
		if strings.Contains(lower, kw) {
			return PersonalityWarm
		}
	}
	for _, kw := range []string{"reserved", "quiet", "guarded", "impatient", "angry"} {
		if strings.Contains(lower, kw) {
			return PersonalityReserved
		}
	}
	return PersonalityNeutral
}

func normalizeTech(text string) TechFamiliarity {
	lower := strings.ToLower(text)
	for _, kw := range []string{"expert", "daily", "advanced", "high", "comfortable"} {
		if strings.Contains(lower, kw) {
			return TechHigh
		}
	}
	for _, kw := range []string{"never", "rarely", "struggle", "low", "basic"} {
		if strings.Contains(lower, kw) {
			return TechLow
		}
	}
	return TechMedium
}

// voiceProfiles maps bucket/personality/gender to a provider voice ID.
// Gender keys are "female" and "male"; lookup falls back female then male
// when the persona's gender is unknown or unlisted.
var voiceProfiles = map[AgeBucket]map[Personality]map[string]string{
	BucketYouth: {
		PersonalityWarm:     {"female": "vp-youth-warm-f", "male": "vp-youth-warm-m"},
		PersonalityNeutral:  {"female": "vp-youth-neutral-f", "male": "vp-youth-neutral-m"},
		PersonalityReserved: {"female": "vp-youth-reserved-f", "male": "vp-youth-reserved-m"},
	},
	BucketAdult: {
		PersonalityWarm:     {"female": "vp-adult-warm-f", "male": "vp-adult-warm-m"},
		PersonalityNeutral:  {"female": "vp-adult-neutral-f", "male": "vp-adult-neutral-m"},
		PersonalityReserved: {"female": "vp-adult-reserved-f", "male": "vp-adult-reserved-m"},
	},
	BucketSenior: {
		PersonalityWarm:     {"female": "vp-senior-warm-f", "male": "vp-senior-warm-m"},
		PersonalityNeutral:  {"female": "vp-senior-neutral-f", "male": "vp-senior-neutral-m"},
		PersonalityReserved: {"female": "vp-senior-reserved-f", "male": "vp-senior-reserved-m"},
	},
}

func lookupVoiceProfile(bucket AgeBucket, personality Personality, gender string) string {
	byPersonality, ok := voiceProfiles[bucket]
	if !ok {
		byPersonality = voiceProfiles[BucketAdult]
	}
	byGender, ok := byPersonality[personality]
	if !ok {
		byGender = byPersonality[PersonalityNeutral]
	}

	g := strings.ToLower(strings.TrimSpace(gender))
	if id, ok := byGender[g]; ok {
		return id
	}
	if id, ok := byGender["female"]; ok {
		return id
	}
	return byGender["male"]
}

// Brief renders a one-line persona description for prompts and advisory
// context.
func Brief(p *entities.Persona, k Knobs) string {
	var sb strings.Builder
	if p != nil && p.Name != "" {
		sb.WriteString(p.Name)
	} else {
		sb.WriteString("Persona")
	}
	sb.WriteString(", ")
	sb.WriteString(string(k.Bucket))
	sb.WriteString(", ")
	sb.WriteString(string(k.Personality))
	if p != nil && p.Occupation != "" {
		sb.WriteString(", ")
		sb.WriteString(p.Occupation)
	}
	if len(k.Traits) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(k.Traits, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}
