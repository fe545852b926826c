package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Event is a low-level frame received from the voice provider.
type Event interface {
	eventType() string
}

// ReadyEvent is the provider's acknowledgement of the session config.
type ReadyEvent struct {
	ProviderSessionID string
}

func (e ReadyEvent) eventType() string { return "session.ready" }

// PersonaTextEvent carries spoken persona text, partial or final.
type PersonaTextEvent struct {
	TurnID      string
	Text        string
	Final       bool
	Emotions    []RawEmotion
	TimestampMS int64
}

func (e PersonaTextEvent) eventType() string { return "persona.text" }

// InterviewerTextEvent carries a transcript of the interviewer's speech.
type InterviewerTextEvent struct {
	TurnID      string
	Text        string
	Final       bool
	TimestampMS int64
}

func (e InterviewerTextEvent) eventType() string { return "interviewer.text" }

// AudioChunkEvent is one chunk of synthesized persona audio.
type AudioChunkEvent struct {
	TurnID   string
	Seq      int64
	Data     []byte
	Encoding string
}

func (e AudioChunkEvent) eventType() string { return "persona.audio" }

// AudioDoneEvent marks the end of a persona audio turn.
type AudioDoneEvent struct {
	TurnID string
}

func (e AudioDoneEvent) eventType() string { return "persona.audio_done" }

// VoiceActivityEvent reports interviewer voice onset, used to cut playback
// when barge-in is enabled.
type VoiceActivityEvent struct {
	Active      bool
	TimestampMS int64
}

func (e VoiceActivityEvent) eventType() string { return "interviewer.voice" }

// EndedEvent signals that the provider closed the session.
type EndedEvent struct {
	Reason string
}

func (e EndedEvent) eventType() string { return "session.ended" }

// ErrorEvent is a provider-side failure.
type ErrorEvent struct {
	Code    string
	Message string
}

func (e ErrorEvent) eventType() string { return "error" }

// UnknownEvent preserves frames of types this client does not understand.
// Unknown frame types are forwarded, never treated as errors.
type UnknownEvent struct {
	Type string
	Raw  json.RawMessage
}

func (e UnknownEvent) eventType() string { return e.Type }

// RawEmotion is an emotion signal as delivered on the wire
type RawEmotion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// audioChunkHeader precedes a binary audio frame when the provider sends
// audio out of band instead of base64 in the JSON frame.
type audioChunkHeader struct {
	Type     string `json:"type"`
	TurnID   string `json:"turn_id"`
	Seq      int64  `json:"seq"`
	Encoding string `json:"encoding"`
}

type textFrame struct {
	Type        string       `json:"type"`
	TurnID      string       `json:"turn_id"`
	Text        string       `json:"text"`
	Final       bool         `json:"final"`
	Emotions    []RawEmotion `json:"emotions"`
	TimestampMS int64        `json:"timestamp_ms"`
	Seq         int64        `json:"seq"`
	AudioB64    string       `json:"audio_b64"`
	Encoding    string       `json:"encoding"`
	Active      bool         `json:"active"`
	Reason      string       `json:"reason"`
	Code        string       `json:"code"`
	Message     string       `json:"message"`
	SessionID   string       `json:"session_id"`
}

// decodeTextFrame turns one JSON frame into an Event. A frame announcing a
// following binary audio chunk returns a nil event and fills pendingHeader.
func decodeTextFrame(data []byte, pendingHeader **audioChunkHeader) (Event, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode frame envelope: %w", err)
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return nil, fmt.Errorf("frame missing type")
	}

	var frame textFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("decode %s frame: %w", typ, err)
	}

	switch typ {
	case "session.ready":
		return ReadyEvent{ProviderSessionID: frame.SessionID}, nil
	case "persona.text":
		return PersonaTextEvent{
			TurnID:      frame.TurnID,
			Text:        frame.Text,
			Final:       frame.Final,
			Emotions:    frame.Emotions,
			TimestampMS: frame.TimestampMS,
		}, nil
	case "interviewer.text":
		return InterviewerTextEvent{
			TurnID:      frame.TurnID,
			Text:        frame.Text,
			Final:       frame.Final,
			TimestampMS: frame.TimestampMS,
		}, nil
	case "persona.audio":
		audio, err := base64.StdEncoding.DecodeString(frame.AudioB64)
		if err != nil {
			return nil, fmt.Errorf("decode persona audio chunk: %w", err)
		}
		encoding := frame.Encoding
		if encoding == "" {
			encoding = "pcm_s16le"
		}
		return AudioChunkEvent{
			TurnID:   frame.TurnID,
			Seq:      frame.Seq,
			Data:     audio,
			Encoding: encoding,
		}, nil
	case "persona.audio_header":
		*pendingHeader = &audioChunkHeader{
			Type:     typ,
			TurnID:   frame.TurnID,
			Seq:      frame.Seq,
			Encoding: frame.Encoding,
		}
		return nil, nil
	case "persona.audio_done":
		return AudioDoneEvent{TurnID: frame.TurnID}, nil
	case "interviewer.voice":
		return VoiceActivityEvent{Active: frame.Active, TimestampMS: frame.TimestampMS}, nil
	case "session.ended":
		return EndedEvent{Reason: frame.Reason}, nil
	case "error":
		return ErrorEvent{Code: frame.Code, Message: frame.Message}, nil
	default:
		return UnknownEvent{
			Type: typ,
			Raw:  append(json.RawMessage(nil), data...),
		}, nil
	}
}
