package whatsapp

import "encoding/json"

// Envelope is the Meta webhook delivery payload. Message and status events
// arrive under entry[].changes[].value.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string        `json:"messaging_product"`
	Contacts         []Contact     `json:"contacts"`
	Messages         []Message     `json:"messages"`
	Statuses         []StatusEvent `json:"statuses"`
}

// Contact carries the sender's profile as reported by the provider.
type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Message is one inbound message event. Exactly one of the typed payload
// fields is set, selected by Type; unrecognized types carry none of them.
type Message struct {
	ID        string           `json:"id"`
	From      string           `json:"from"`
	Timestamp string           `json:"timestamp"`
	Type      string           `json:"type"`
	Text      *TextPayload     `json:"text,omitempty"`
	Image     *MediaPayload    `json:"image,omitempty"`
	Document  *DocumentPayload `json:"document,omitempty"`
	Audio     *MediaPayload    `json:"audio,omitempty"`
	Location  *LocationPayload `json:"location,omitempty"`
}

type TextPayload struct {
	Body string `json:"body"`
}

type MediaPayload struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
}

type DocumentPayload struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Filename string `json:"filename"`
}

type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

// StatusEvent is a delivery/read receipt for a previously sent message.
type StatusEvent struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
	Timestamp   string `json:"timestamp"`
}

// ParseEnvelope decodes a raw webhook body.
func ParseEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// InboundBatch is one change's messages together with the sender profile
// reported alongside them. A single delivery can batch changes from different
// senders, so the contact must stay scoped to its own change.
type InboundBatch struct {
	Messages []Message
	Contact  *Contact
}

// Events splits the envelope into per-change message batches and the flat
// status list; the provider batches both kinds in a single delivery.
func (e Envelope) Events() (batches []InboundBatch, statuses []StatusEvent) {
	for _, entry := range e.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			statuses = append(statuses, value.Statuses...)
			if len(value.Messages) == 0 {
				continue
			}
			batch := InboundBatch{Messages: value.Messages}
			if len(value.Contacts) > 0 {
				first := value.Contacts[0]
				batch.Contact = &first
			}
			batches = append(batches, batch)
		}
	}
	return batches, statuses
}
