package persona

import (
	"reflect"
	"testing"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
)

func intPtr(v int) *int { return &v }

func TestDerive_GuardedSenior(t *testing.T) {
	p := &entities.Persona{
		Age:         intPtr(65),
		Personality: "guarded",
	}

	k := Derive(p)

	if k.Bucket != BucketSenior {
		t.Fatalf("expected senior bucket got %s", k.Bucket)
	}
	if k.Personality != PersonalityReserved {
		t.Fatalf("expected reserved personality got %s", k.Personality)
	}
	if k.SpeechRate != 0.9 {
		t.Fatalf("expected speech rate 0.9 got %v", k.SpeechRate)
	}
}

func TestDerive_Defaults(t *testing.T) {
	k := Derive(nil)

	if k.Age != 35 {
		t.Fatalf("expected default age 35 got %d", k.Age)
	}
	if k.Bucket != BucketAdult {
		t.Fatalf("expected adult bucket got %s", k.Bucket)
	}
	if k.Personality != PersonalityNeutral {
		t.Fatalf("expected neutral personality got %s", k.Personality)
	}
	if k.Openness != 0.5 || k.Cautiousness != 0.6 {
		t.Fatalf("unexpected disclosure defaults: openness=%v cautiousness=%v", k.Openness, k.Cautiousness)
	}
	if k.TrustWarmupTurns != 4 {
		t.Fatalf("expected trust warmup 4 got %d", k.TrustWarmupTurns)
	}
	if k.TurnTaking.MaxSeconds != 8 || !k.TurnTaking.InterruptOnVoice {
		t.Fatalf("unexpected turn taking defaults: %+v", k.TurnTaking)
	}
	if k.SpeechRate != 1.0 {
		t.Fatalf("expected speech rate 1.0 got %v", k.SpeechRate)
	}
	if k.VoiceProfileID == "" {
		t.Fatal("expected a voice profile for default knobs")
	}
}

func TestDerive_Deterministic(t *testing.T) {
	p := &entities.Persona{
		Age:         intPtr(22),
		Gender:      "male",
		Personality: "friendly and open",
		TechComfort: "uses apps daily",
		Traits:      []string{"curious"},
	}

	first := Derive(p)
	second := Derive(p)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("derivation not deterministic:\n%+v\n%+v", first, second)
	}
	if first.Bucket != BucketYouth || first.Personality != PersonalityWarm || first.TechFamiliarity != TechHigh {
		t.Fatalf("unexpected classification: %+v", first)
	}
	if first.VoiceProfileID != "vp-youth-warm-m" {
		t.Fatalf("expected male youth warm voice got %s", first.VoiceProfileID)
	}
}

func TestLookupVoiceProfile_GenderFallback(t *testing.T) {
	// Unknown gender falls back to the female bucket.
	id := lookupVoiceProfile(BucketAdult, PersonalityNeutral, "")
	if id != "vp-adult-neutral-f" {
		t.Fatalf("expected female fallback got %s", id)
	}

	// Unlisted gender string behaves the same.
	id = lookupVoiceProfile(BucketSenior, PersonalityWarm, "nonbinary")
	if id != "vp-senior-warm-f" {
		t.Fatalf("expected female fallback got %s", id)
	}
}

func TestBucketAge_Boundaries(t *testing.T) {
	cases := []struct {
		age  int
		want AgeBucket
	}{
		{24, BucketYouth},
		{25, BucketAdult},
		{59, BucketAdult},
		{60, BucketSenior},
	}
	for _, c := range cases {
		if got := bucketAge(c.age); got != c.want {
			t.Fatalf("age %d: expected %s got %s", c.age, c.want, got)
		}
	}
}
