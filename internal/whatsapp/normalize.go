package whatsapp

import (
	"errors"
	"fmt"
)

// Placeholder bodies synthesized for non-text content. These match what the
// CRM UI shows in the conversation list preview.
const (
	placeholderImage    = "📷 Imagine"
	placeholderDocument = "📄 Document"
	placeholderAudio    = "🎵 Mesaj vocal"
	placeholderLocation = "Vezi harta"
)

// ErrMissingMessageID marks an inbound event without a provider message id;
// such events cannot be deduplicated and are dropped by the caller.
var ErrMissingMessageID = errors.New("inbound event missing message id")

// NormalizedMessage is the internal representation of one inbound message,
// independent of the provider's per-type payload shapes.
type NormalizedMessage struct {
	Phone       string
	MessageID   string
	DisplayName string
	Type        string
	Body        string
	MediaRef    string
	MediaMime   string
}

// Normalize maps a provider message (plus the optional sender contact) into a
// NormalizedMessage. Content types map as follows: text keeps its body; image
// and document prefer caption/filename over a placeholder; audio always gets
// a placeholder; location embeds its name or address; anything else becomes a
// bracketed tag of the raw type so no event is silently dropped.
func Normalize(msg Message, contact *Contact) (NormalizedMessage, error) {
	if msg.ID == "" {
		return NormalizedMessage{}, ErrMissingMessageID
	}
	if msg.From == "" {
		return NormalizedMessage{}, fmt.Errorf("inbound event %s missing sender phone", msg.ID)
	}

	out := NormalizedMessage{
		Phone:       msg.From,
		MessageID:   msg.ID,
		DisplayName: msg.From,
		Type:        msg.Type,
	}
	if out.Type == "" {
		out.Type = "text"
	}
	if contact != nil && contact.Profile.Name != "" {
		out.DisplayName = contact.Profile.Name
	}

	switch msg.Type {
	case "text", "":
		if msg.Text != nil {
			out.Body = msg.Text.Body
		}
	case "image":
		out.Body = placeholderImage
		if msg.Image != nil {
			if msg.Image.Caption != "" {
				out.Body = msg.Image.Caption
			}
			out.MediaRef = msg.Image.ID
			out.MediaMime = msg.Image.MimeType
		}
	case "document":
		out.Body = placeholderDocument
		if msg.Document != nil {
			if msg.Document.Filename != "" {
				out.Body = msg.Document.Filename
			}
			out.MediaRef = msg.Document.ID
			out.MediaMime = msg.Document.MimeType
		}
	case "audio":
		out.Body = placeholderAudio
		if msg.Audio != nil {
			out.MediaRef = msg.Audio.ID
		}
	case "location":
		place := placeholderLocation
		if msg.Location != nil {
			if msg.Location.Name != "" {
				place = msg.Location.Name
			} else if msg.Location.Address != "" {
				place = msg.Location.Address
			}
		}
		out.Body = fmt.Sprintf("📍 Locație: %s", place)
	default:
		out.Body = fmt.Sprintf("[%s]", msg.Type)
	}

	return out, nil
}
