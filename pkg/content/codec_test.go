package content

import (
	"strings"
	"testing"
)

func TestEncodeMediaRoundTrip(t *testing.T) {
	t.Parallel()

	encoded := EncodeMedia(Media{MediaType: MediaImage, URL: "https://x/y.png"})
	if !strings.HasPrefix(encoded, "__media__") {
		t.Fatalf("encoded = %q, want __media__ prefix", encoded)
	}

	d := DecodeMessage(encoded)
	if d.Kind != KindMedia {
		t.Fatalf("Kind = %q, want %q", d.Kind, KindMedia)
	}
	if d.Media.MediaType != MediaImage {
		t.Errorf("MediaType = %q, want %q", d.Media.MediaType, MediaImage)
	}
	if d.Media.URL != "https://x/y.png" {
		t.Errorf("URL = %q, want %q", d.Media.URL, "https://x/y.png")
	}
}

func TestEncodeMediaOptionalFields(t *testing.T) {
	t.Parallel()

	encoded := EncodeMedia(Media{
		MediaType:  MediaAudio,
		URL:        "https://x/a.webm",
		Name:       "voice.webm",
		MIMEType:   "audio/webm",
		Size:       2048,
		DurationMs: 3500,
	})

	d := DecodeMessage(encoded)
	if d.Kind != KindMedia {
		t.Fatalf("Kind = %q, want %q", d.Kind, KindMedia)
	}
	if d.Media.Name != "voice.webm" {
		t.Errorf("Name = %q, want %q", d.Media.Name, "voice.webm")
	}
	if d.Media.Size != 2048 {
		t.Errorf("Size = %d, want 2048", d.Media.Size)
	}
	if d.Media.DurationMs != 3500 {
		t.Errorf("DurationMs = %d, want 3500", d.Media.DurationMs)
	}
}

func TestDecodeMessagePlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"plain", "hello"},
		{"empty", ""},
		{"json-looking", `{"mediaType":"image","url":"https://x"}`},
		{"call event tag is not media", `__call_event__{"callId":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := DecodeMessage(tt.raw)
			if d.Kind != KindText {
				t.Fatalf("Kind = %q, want %q", d.Kind, KindText)
			}
			if d.Text != tt.raw {
				t.Errorf("Text = %q, want %q", d.Text, tt.raw)
			}
		})
	}
}

func TestDecodeMessageMalformedEnvelopeFallsBackToText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", "__media__{not valid json"},
		{"missing url", `__media__{"mediaType":"image"}`},
		{"missing media type", `__media__{"url":"https://x"}`},
		{"wrong url type", `__media__{"mediaType":"image","url":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := DecodeMessage(tt.raw)
			if d.Kind != KindText {
				t.Fatalf("Kind = %q, want %q", d.Kind, KindText)
			}
			if d.Text != tt.raw {
				t.Errorf("Text = %q, want raw string back", d.Text)
			}
		})
	}
}

func TestEncodeCallEventRoundTrip(t *testing.T) {
	t.Parallel()

	encoded := EncodeCallEvent(CallEvent{
		EventType: EventMissedCall,
		CallID:    "abc",
		CallType:  CallVideo,
	})

	ev := DecodeCallEvent(encoded)
	if ev == nil {
		t.Fatal("DecodeCallEvent returned nil")
	}
	if ev.EventType != EventMissedCall {
		t.Errorf("EventType = %q, want %q", ev.EventType, EventMissedCall)
	}
	if ev.CallID != "abc" {
		t.Errorf("CallID = %q, want %q", ev.CallID, "abc")
	}
	if ev.CallType != CallVideo {
		t.Errorf("CallType = %q, want %q", ev.CallType, CallVideo)
	}
}

func TestEncodeCallEventDefaults(t *testing.T) {
	t.Parallel()

	ev := DecodeCallEvent(EncodeCallEvent(CallEvent{CallID: "xyz"}))
	if ev == nil {
		t.Fatal("DecodeCallEvent returned nil")
	}
	if ev.EventType != EventMissedCall {
		t.Errorf("EventType = %q, want %q", ev.EventType, EventMissedCall)
	}
	if ev.CallType != CallVoice {
		t.Errorf("CallType = %q, want %q", ev.CallType, CallVoice)
	}
}

func TestDecodeCallEventSnakeCase(t *testing.T) {
	t.Parallel()

	raw := `__call_event__{"event_type":"missed_call","call_id":"abc","call_type":"video","caller_id":"u1","caller_name":"Ms. Smith","thread_id":"t1","occurred_at":"2024-05-01T10:00:00Z"}`

	ev := DecodeCallEvent(raw)
	if ev == nil {
		t.Fatal("DecodeCallEvent returned nil for snake_case payload")
	}
	if ev.CallID != "abc" {
		t.Errorf("CallID = %q, want %q", ev.CallID, "abc")
	}
	if ev.CallType != CallVideo {
		t.Errorf("CallType = %q, want %q", ev.CallType, CallVideo)
	}
	if ev.CallerID != "u1" {
		t.Errorf("CallerID = %q, want %q", ev.CallerID, "u1")
	}
	if ev.CallerName != "Ms. Smith" {
		t.Errorf("CallerName = %q, want %q", ev.CallerName, "Ms. Smith")
	}
	if ev.ThreadID != "t1" {
		t.Errorf("ThreadID = %q, want %q", ev.ThreadID, "t1")
	}
	if ev.OccurredAt != "2024-05-01T10:00:00Z" {
		t.Errorf("OccurredAt = %q", ev.OccurredAt)
	}
}

func TestDecodeCallEventRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"no prefix", `{"eventType":"missed_call","callId":"abc"}`},
		{"invalid json", "__call_event__{nope"},
		{"missing call id", `__call_event__{"eventType":"missed_call"}`},
		{"empty call id", `__call_event__{"eventType":"missed_call","callId":""}`},
		{"wrong event type", `__call_event__{"eventType":"answered_call","callId":"abc"}`},
		{"numeric call id", `__call_event__{"eventType":"missed_call","callId":7}`},
		{"media prefix", `__media__{"mediaType":"image","url":"https://x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if ev := DecodeCallEvent(tt.raw); ev != nil {
				t.Fatalf("DecodeCallEvent(%q) = %+v, want nil", tt.raw, ev)
			}
		})
	}
}

func TestDecodeCallEventCallTypeNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want CallType
	}{
		{"exact video", `__call_event__{"eventType":"missed_call","callId":"a","callType":"video"}`, CallVideo},
		{"voice", `__call_event__{"eventType":"missed_call","callId":"a","callType":"voice"}`, CallVoice},
		{"unknown value", `__call_event__{"eventType":"missed_call","callId":"a","callType":"VIDEO"}`, CallVoice},
		{"absent", `__call_event__{"eventType":"missed_call","callId":"a"}`, CallVoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := DecodeCallEvent(tt.raw)
			if ev == nil {
				t.Fatal("DecodeCallEvent returned nil")
			}
			if ev.CallType != tt.want {
				t.Errorf("CallType = %q, want %q", ev.CallType, tt.want)
			}
		})
	}
}

func TestDecodeIsRepeatable(t *testing.T) {
	t.Parallel()

	raw := EncodeMedia(Media{MediaType: MediaFile, URL: "https://x/f.pdf", Name: "report.pdf"})
	first := DecodeMessage(raw)
	second := DecodeMessage(raw)

	if first.Kind != second.Kind || first.Media.URL != second.Media.URL || first.Media.Name != second.Media.Name {
		t.Error("repeated decodes of the same string disagree")
	}
}
