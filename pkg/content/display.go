package content

// Preview labels for non-text content in thread lists.
const (
	labelMissedCall      = "📞 Missed call"
	labelMissedVideoCall = "📹 Missed video call"
	labelVoiceMessage    = "🎤 Voice message"
	labelImage           = "📷 Image"
	labelFileAttachment  = "📎 File attachment"
	labelAttachment      = "📎 Attachment"
)

// DisplayText derives the human-readable preview for a stored content
// string. Plain text passes through unchanged; envelopes map to fixed
// glyph+label strings. Like the decoders it is total and never fails.
func DisplayText(raw string) string {
	if ev := DecodeCallEvent(raw); ev != nil {
		if ev.CallType == CallVideo {
			return labelMissedVideoCall
		}
		return labelMissedCall
	}

	d := DecodeMessage(raw)
	if d.Kind != KindMedia {
		return d.Text
	}

	switch d.Media.MediaType {
	case MediaAudio:
		return labelVoiceMessage
	case MediaImage:
		return labelImage
	case MediaFile:
		if d.Media.Name != "" {
			return "📎 " + d.Media.Name
		}
		return labelFileAttachment
	default:
		return labelAttachment
	}
}
