package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/pkg/config"
)

// Client is a minimal client for the coaching advisory service. The service
// looks at the live conversation and suggests interviewer technique
// improvements; it is best effort and never blocks the session.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates an advisory client using values from the provided config
func NewClient(cfg *config.AdvisoryConfig) *Client {
	timeout := 5 * time.Second
	if cfg != nil && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	var apiKey, base string
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

// Available reports whether the client is configured to make calls
func (c *Client) Available() bool {
	return c != nil && c.baseURL != ""
}

// TipRequest is the conversation context sent for advice
type TipRequest struct {
	RecentTurns      []entities.Turn         `json:"recentTurns"`
	CurrentUtterance string                  `json:"currentUtterance"`
	PersonaBrief     string                  `json:"personaBrief"`
	RecentEmotions   []entities.EmotionScore `json:"recentEmotions,omitempty"`
}

type tipResponse struct {
	Label      string `json:"label"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
	Severity   string `json:"severity"`
}

// Suggest asks the advisory service for one coaching tip. An empty tip with
// a nil error means the service had nothing to say.
func (c *Client) Suggest(ctx context.Context, req TipRequest) (entities.CoachTip, error) {
	if !c.Available() {
		return entities.CoachTip{}, fmt.Errorf("advisory service not configured")
	}

	b, err := json.Marshal(req)
	if err != nil {
		return entities.CoachTip{}, err
	}

	endpoint := c.baseURL + "/v1/coach/suggest"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return entities.CoachTip{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return entities.CoachTip{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return entities.CoachTip{}, nil
	}
	if resp.StatusCode >= 400 {
		return entities.CoachTip{}, fmt.Errorf("advisory returned status %d", resp.StatusCode)
	}

	var tr tipResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return entities.CoachTip{}, err
	}
	if tr.Message == "" && tr.Suggestion == "" {
		return entities.CoachTip{}, nil
	}

	severity := entities.CoachSeverity(tr.Severity)
	switch severity {
	case entities.CoachSeverityInfo, entities.CoachSeverityNudge, entities.CoachSeverityImportant:
	default:
		severity = entities.CoachSeverityInfo
	}

	label := entities.CoachLabel(tr.Label)
	switch label {
	case entities.CoachLabelRapport, entities.CoachLabelTooPersonal, entities.CoachLabelFactCheck,
		entities.CoachLabelDoubleBarreled, entities.CoachLabelHostileTone, entities.CoachLabelOpenQuestion:
	default:
		label = entities.CoachLabelGeneric
	}

	return entities.CoachTip{
		Label:      label,
		Message:    tr.Message,
		Suggestion: tr.Suggestion,
		Severity:   severity,
		At:         time.Now().UnixMilli(),
	}, nil
}
