package realtime

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestDecodeTextFrame_PersonaText(t *testing.T) {
	var pending *audioChunkHeader
	ev, err := decodeTextFrame([]byte(`{"type":"persona.text","turn_id":"t-1","text":"I mostly shop online.","final":true,"emotions":[{"name":"calm","score":0.7}],"timestamp_ms":1200}`), &pending)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	text, ok := ev.(PersonaTextEvent)
	if !ok {
		t.Fatalf("expected PersonaTextEvent, got %T", ev)
	}
	if !text.Final || text.Text != "I mostly shop online." {
		t.Fatalf("unexpected event %+v", text)
	}
	if len(text.Emotions) != 1 || text.Emotions[0].Name != "calm" {
		t.Fatalf("emotions not carried: %+v", text.Emotions)
	}
}

func TestDecodeTextFrame_InlineAudio(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	var pending *audioChunkHeader
	ev, err := decodeTextFrame([]byte(`{"type":"persona.audio","turn_id":"t-1","seq":3,"audio_b64":"`+base64.StdEncoding.EncodeToString(pcm)+`"}`), &pending)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	chunk, ok := ev.(AudioChunkEvent)
	if !ok {
		t.Fatalf("expected AudioChunkEvent, got %T", ev)
	}
	if !bytes.Equal(chunk.Data, pcm) {
		t.Fatalf("audio bytes mangled: %v", chunk.Data)
	}
	if chunk.Encoding != "pcm_s16le" {
		t.Fatalf("missing encoding must default to pcm_s16le, got %q", chunk.Encoding)
	}
	if chunk.Seq != 3 {
		t.Fatalf("unexpected seq %d", chunk.Seq)
	}
}

func TestDecodeTextFrame_AudioHeaderAnnouncesBinary(t *testing.T) {
	var pending *audioChunkHeader
	ev, err := decodeTextFrame([]byte(`{"type":"persona.audio_header","turn_id":"t-2","seq":1,"encoding":"pcm_s16le"}`), &pending)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if ev != nil {
		t.Fatalf("header frame must not yield an event, got %T", ev)
	}
	if pending == nil || pending.TurnID != "t-2" {
		t.Fatalf("pending header not recorded: %+v", pending)
	}
}

func TestDecodeTextFrame_UnknownTypePreserved(t *testing.T) {
	raw := `{"type":"provider.debug","detail":"noise"}`
	var pending *audioChunkHeader
	ev, err := decodeTextFrame([]byte(raw), &pending)
	if err != nil {
		t.Fatalf("unknown type must not error: %v", err)
	}
	unknown, ok := ev.(UnknownEvent)
	if !ok {
		t.Fatalf("expected UnknownEvent, got %T", ev)
	}
	if unknown.Type != "provider.debug" {
		t.Fatalf("unexpected type %q", unknown.Type)
	}
	if string(unknown.Raw) != raw {
		t.Fatalf("raw frame not preserved: %s", unknown.Raw)
	}
}

func TestDecodeTextFrame_Malformed(t *testing.T) {
	var pending *audioChunkHeader
	if _, err := decodeTextFrame([]byte(`not json`), &pending); err == nil {
		t.Fatal("expected error for non-JSON frame")
	}
	if _, err := decodeTextFrame([]byte(`{"text":"hello"}`), &pending); err == nil {
		t.Fatal("expected error for frame without type")
	}
	if _, err := decodeTextFrame([]byte(`{"type":"persona.audio","audio_b64":"%%%"}`), &pending); err == nil {
		t.Fatal("expected error for invalid base64 audio")
	}
}

func TestDecodeTextFrame_Lifecycle(t *testing.T) {
	var pending *audioChunkHeader
	ev, err := decodeTextFrame([]byte(`{"type":"session.ready","session_id":"prov-1"}`), &pending)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if ready, ok := ev.(ReadyEvent); !ok || ready.ProviderSessionID != "prov-1" {
		t.Fatalf("unexpected ready event %+v", ev)
	}

	ev, err = decodeTextFrame([]byte(`{"type":"session.ended","reason":"remote hangup"}`), &pending)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if ended, ok := ev.(EndedEvent); !ok || ended.Reason != "remote hangup" {
		t.Fatalf("unexpected ended event %+v", ev)
	}

	ev, err = decodeTextFrame([]byte(`{"type":"interviewer.voice","active":true,"timestamp_ms":500}`), &pending)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if voice, ok := ev.(VoiceActivityEvent); !ok || !voice.Active {
		t.Fatalf("unexpected voice event %+v", ev)
	}
}
