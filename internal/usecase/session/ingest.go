package session

import (
	"encoding/json"
	"strings"

	"github.com/hoangnam-dev/persona-interview/internal/domain/entities"
	"github.com/hoangnam-dev/persona-interview/internal/usecase/sensitivity"
)

// WebhookEvent is the normalized form of an out-of-band delivery payload.
// Decoding is total: any parseable JSON object maps to exactly one variant,
// malformed input maps to none.
type WebhookEvent interface {
	webhookEventType() string
}

// WebhookTurnEvent is a transcript/message payload normalized into a turn
type WebhookTurnEvent struct {
	ID       string
	Role     entities.TurnRole
	Text     string
	Emotions []entities.EmotionScore
	At       int64
}

func (e WebhookTurnEvent) webhookEventType() string { return "turn" }

// WebhookEmotionEvent carries an emotion vector for the latest persona turn
type WebhookEmotionEvent struct {
	ID       string
	Emotions []entities.EmotionScore
}

func (e WebhookEmotionEvent) webhookEventType() string { return "emotion" }

// WebhookEndedEvent signals the remote session ended
type WebhookEndedEvent struct {
	ID     string
	Reason string
}

func (e WebhookEndedEvent) webhookEventType() string { return "ended" }

// WebhookUnknownEvent preserves payloads with unrecognized types
type WebhookUnknownEvent struct {
	ID   string
	Type string
}

func (e WebhookUnknownEvent) webhookEventType() string { return "unknown" }

// DecodeWebhook normalizes a raw webhook payload. The only error case is
// input that is not a JSON object; everything else maps to a variant.
func DecodeWebhook(payload []byte) (WebhookEvent, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	id := stringField(raw, "id", "event_id", "eventId")
	typ := strings.ToLower(stringField(raw, "type", "event", "kind"))

	switch {
	case strings.Contains(typ, "transcript"), strings.Contains(typ, "message"):
		text := extractText(raw)
		if text == "" || sensitivity.IsGuidance(text) {
			// control signal or nothing to show, skip the turn
			return WebhookUnknownEvent{ID: id, Type: typ}, nil
		}
		return WebhookTurnEvent{
			ID:       id,
			Role:     classifyRole(raw),
			Text:     text,
			Emotions: extractEmotions(raw),
			At:       int64Field(raw, "timestamp", "timestamp_ms", "at"),
		}, nil
	case strings.Contains(typ, "emotion"), strings.Contains(typ, "signal"):
		return WebhookEmotionEvent{ID: id, Emotions: extractEmotions(raw)}, nil
	case strings.Contains(typ, "ended"):
		return WebhookEndedEvent{ID: id, Reason: stringField(raw, "reason")}, nil
	default:
		return WebhookUnknownEvent{ID: id, Type: typ}, nil
	}
}

func stringField(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func int64Field(raw map[string]interface{}, keys ...string) int64 {
	for _, k := range keys {
		if v, ok := raw[k].(float64); ok {
			return int64(v)
		}
	}
	return 0
}

// extractText probes the candidate field paths a payload may use for its
// textual content.
func extractText(raw map[string]interface{}) string {
	if v, ok := raw["text"].(string); ok {
		return strings.TrimSpace(v)
	}
	switch msg := raw["message"].(type) {
	case string:
		return strings.TrimSpace(msg)
	case map[string]interface{}:
		if v, ok := msg["content"].(string); ok {
			return strings.TrimSpace(v)
		}
		if v, ok := msg["text"].(string); ok {
			return strings.TrimSpace(v)
		}
	}
	if v, ok := raw["content"].(string); ok {
		return strings.TrimSpace(v)
	}
	if payload, ok := raw["payload"].(map[string]interface{}); ok {
		return extractText(payload)
	}
	return ""
}

// classifyRole maps a role/speaker field to a turn role by substring.
// Anything not recognizably the persona is the interviewer.
func classifyRole(raw map[string]interface{}) entities.TurnRole {
	role := strings.ToLower(stringField(raw, "role", "speaker"))
	for _, kw := range []string{"assistant", "agent", "persona"} {
		if strings.Contains(role, kw) {
			return entities.RolePersona
		}
	}
	return entities.RoleInterviewer
}

// extractEmotions accepts an array of scored objects, a flat name-to-number
// map, or well-known nested paths. Failure yields an empty vector, never an
// error. The result is reduced to the top 3 by score.
func extractEmotions(raw map[string]interface{}) []entities.EmotionScore {
	for _, key := range []string{"emotions", "signals", "scores"} {
		if found := emotionsFromValue(raw[key]); len(found) > 0 {
			return entities.TopEmotions(found, 3)
		}
	}
	if payload, ok := raw["payload"].(map[string]interface{}); ok {
		return extractEmotions(payload)
	}
	return nil
}

func emotionsFromValue(v interface{}) []entities.EmotionScore {
	switch val := v.(type) {
	case []interface{}:
		var out []entities.EmotionScore
		for _, item := range val {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			name := stringField(obj, "name", "label", "key")
			score, ok := numberField(obj, "score", "value", "confidence", "probability")
			if name == "" || !ok {
				continue
			}
			out = append(out, entities.EmotionScore{Name: name, Score: score})
		}
		return out
	case map[string]interface{}:
		// flat name -> number map, detected when most values are numeric
		numeric := 0
		for _, item := range val {
			if _, ok := item.(float64); ok {
				numeric++
			}
		}
		if numeric == 0 || numeric*2 < len(val) {
			return nil
		}
		var out []entities.EmotionScore
		for name, item := range val {
			if score, ok := item.(float64); ok {
				out = append(out, entities.EmotionScore{Name: name, Score: score})
			}
		}
		return out
	default:
		return nil
	}
}

func numberField(raw map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := raw[k].(float64); ok {
			return v, true
		}
	}
	return 0, false
}
