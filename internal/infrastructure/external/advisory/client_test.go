package advisory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/pkg/config"
)

func TestSuggest_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1/coach/suggest" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var payload TipRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.CurrentUtterance == "" {
			t.Fatal("current utterance missing")
		}
		json.NewEncoder(w).Encode(map[string]string{
			"label":      "too_personal",
			"message":    "That question probes finances directly.",
			"suggestion": "Ask about spending habits in general terms first.",
			"severity":   "important",
		})
	}))
	defer ts.Close()

	client := NewClient(&config.AdvisoryConfig{BaseURL: ts.URL, APIKey: "test-key"})

	tip, err := client.Suggest(context.Background(), TipRequest{CurrentUtterance: "What is your salary?"})
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if tip.Label != entities.CoachLabelTooPersonal {
		t.Fatalf("unexpected label %s", tip.Label)
	}
	if tip.Severity != entities.CoachSeverityImportant {
		t.Fatalf("unexpected severity %s", tip.Severity)
	}
}

func TestSuggest_NoContentMeansNoTip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := NewClient(&config.AdvisoryConfig{BaseURL: ts.URL, APIKey: "test-key"})

	tip, err := client.Suggest(context.Background(), TipRequest{CurrentUtterance: "How was that?"})
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if !tip.IsEmpty() {
		t.Fatalf("expected empty tip, got %+v", tip)
	}
}

func TestSuggest_NormalizesUnknownLabelAndSeverity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"label":    "made_up_category",
			"message":  "Something to consider.",
			"severity": "critical",
		})
	}))
	defer ts.Close()

	client := NewClient(&config.AdvisoryConfig{BaseURL: ts.URL, APIKey: "test-key"})

	tip, err := client.Suggest(context.Background(), TipRequest{CurrentUtterance: "Hm?"})
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if tip.Label != entities.CoachLabelGeneric {
		t.Fatalf("unknown label must normalize to generic, got %s", tip.Label)
	}
	if tip.Severity != entities.CoachSeverityInfo {
		t.Fatalf("unknown severity must normalize to info, got %s", tip.Severity)
	}
}

func TestSuggest_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(&config.AdvisoryConfig{BaseURL: ts.URL, APIKey: "test-key"})

	if _, err := client.Suggest(context.Background(), TipRequest{CurrentUtterance: "Hm?"}); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestAvailable(t *testing.T) {
	if NewClient(&config.AdvisoryConfig{}).Available() {
		t.Fatal("client without base URL must not be available")
	}
	if !NewClient(&config.AdvisoryConfig{BaseURL: "http://advisory.local"}).Available() {
		t.Fatal("configured client must be available")
	}
}
