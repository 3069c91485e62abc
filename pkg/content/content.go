// Package content implements the message-content wire codec. A message row
// stores a single text column that carries either raw user text, a media
// envelope, or a call-event envelope, discriminated by reserved string
// prefixes. Decoding is total: any string that does not carry a recognized,
// well-formed envelope is plain text.
package content

// Kind discriminates the decoded interpretation of a content string.
type Kind string

// Supported content kinds.
const (
	KindText  Kind = "text"
	KindMedia Kind = "media"
)

// MediaType indicates the category of an attached media object.
type MediaType string

// Supported media types.
const (
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
	MediaFile  MediaType = "file"
)

// CallType indicates whether a call was voice-only or video.
type CallType string

// Supported call types.
const (
	CallVoice CallType = "voice"
	CallVideo CallType = "video"
)

// EventMissedCall is the only call-event type carried in message content.
const EventMissedCall = "missed_call"

// Reserved prefixes. A raw string starting with one of these is interpreted
// as the corresponding envelope; historical rows already use them, so they
// must remain stable.
const (
	mediaPrefix     = "__media__"
	callEventPrefix = "__call_event__"
)

// Media describes an uploaded attachment referenced from a message.
type Media struct {
	MediaType  MediaType `json:"mediaType"`
	URL        string    `json:"url"`
	Name       string    `json:"name,omitempty"`
	MIMEType   string    `json:"mimeType,omitempty"`
	Size       int64     `json:"size,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty"`
}

// CallEvent describes a missed voice or video call rendered inline in a
// message thread.
type CallEvent struct {
	EventType  string   `json:"eventType"`
	CallID     string   `json:"callId"`
	CallType   CallType `json:"callType"`
	CallerID   string   `json:"callerId,omitempty"`
	CallerName string   `json:"callerName,omitempty"`
	ThreadID   string   `json:"threadId,omitempty"`
	OccurredAt string   `json:"occurredAt,omitempty"`
}

// Decoded is the result of decoding a content string. Kind selects which of
// the remaining fields is meaningful.
type Decoded struct {
	Kind  Kind
	Text  string
	Media *Media
}
