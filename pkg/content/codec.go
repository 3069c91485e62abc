package content

import (
	"encoding/json"
	"strings"
)

// EncodeMedia serializes a media envelope into a storable content string.
// The encoder always emits camelCase field names.
func EncodeMedia(m Media) string {
	data, err := json.Marshal(m)
	if err != nil {
		// Media contains only scalar fields; marshaling cannot fail.
		return mediaPrefix + "{}"
	}
	return mediaPrefix + string(data)
}

// EncodeCallEvent serializes a call-event envelope into a storable content
// string. An empty EventType defaults to missed_call, and an empty CallType
// defaults to voice.
func EncodeCallEvent(e CallEvent) string {
	if e.EventType == "" {
		e.EventType = EventMissedCall
	}
	if e.CallType == "" {
		e.CallType = CallVoice
	}
	data, err := json.Marshal(e)
	if err != nil {
		return callEventPrefix + "{}"
	}
	return callEventPrefix + string(data)
}

// callEventWire tolerates both camelCase (current encoder output) and
// snake_case (historical rows) field names.
type callEventWire struct {
	EventType       string `json:"eventType"`
	EventTypeSnake  string `json:"event_type"`
	CallID          string `json:"callId"`
	CallIDSnake     string `json:"call_id"`
	CallType        string `json:"callType"`
	CallTypeSnake   string `json:"call_type"`
	CallerID        string `json:"callerId"`
	CallerIDSnake   string `json:"caller_id"`
	CallerName      string `json:"callerName"`
	CallerNameSnake string `json:"caller_name"`
	ThreadID        string `json:"threadId"`
	ThreadIDSnake   string `json:"thread_id"`
	OccurredAt      string `json:"occurredAt"`
	OccurredAtSnake string `json:"occurred_at"`
}

// DecodeCallEvent returns the call event carried by raw, or nil when raw is
// not a well-formed call-event envelope. It never fails: parse errors and
// shape mismatches all mean "not a call event".
func DecodeCallEvent(raw string) *CallEvent {
	payload, ok := strings.CutPrefix(raw, callEventPrefix)
	if !ok {
		return nil
	}

	var w callEventWire
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil
	}

	if coalesce(w.EventType, w.EventTypeSnake) != EventMissedCall {
		return nil
	}

	callID := coalesce(w.CallID, w.CallIDSnake)
	if callID == "" {
		return nil
	}

	// Only the exact literal "video" selects a video call; anything else,
	// including absence, is a voice call.
	callType := CallVoice
	if coalesce(w.CallType, w.CallTypeSnake) == string(CallVideo) {
		callType = CallVideo
	}

	return &CallEvent{
		EventType:  EventMissedCall,
		CallID:     callID,
		CallType:   callType,
		CallerID:   coalesce(w.CallerID, w.CallerIDSnake),
		CallerName: coalesce(w.CallerName, w.CallerNameSnake),
		ThreadID:   coalesce(w.ThreadID, w.ThreadIDSnake),
		OccurredAt: coalesce(w.OccurredAt, w.OccurredAtSnake),
	}
}

// mediaWire is the decoded media envelope before shape validation.
type mediaWire struct {
	MediaType  string `json:"mediaType"`
	URL        string `json:"url"`
	Name       string `json:"name"`
	MIMEType   string `json:"mimeType"`
	Size       int64  `json:"size"`
	DurationMs int64  `json:"durationMs"`
}

// DecodeMessage interprets raw as either a media envelope or plain text.
// Call-event detection is a separate, earlier check (DecodeCallEvent); the
// two decoders are intentionally not composed. Malformed media envelopes
// fall back to plain text carrying the raw string verbatim.
func DecodeMessage(raw string) Decoded {
	payload, ok := strings.CutPrefix(raw, mediaPrefix)
	if !ok {
		return Decoded{Kind: KindText, Text: raw}
	}

	var w mediaWire
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return Decoded{Kind: KindText, Text: raw}
	}
	if w.URL == "" || w.MediaType == "" {
		return Decoded{Kind: KindText, Text: raw}
	}

	return Decoded{
		Kind: KindMedia,
		Media: &Media{
			MediaType:  MediaType(w.MediaType),
			URL:        w.URL,
			Name:       w.Name,
			MIMEType:   w.MIMEType,
			Size:       w.Size,
			DurationMs: w.DurationMs,
		},
	}
}

// coalesce returns the first non-empty string.
func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
