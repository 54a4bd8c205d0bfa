// Package messaging persists WhatsApp messages idempotently, keeps the
// conversation aggregates in step, and orchestrates outbound sends.
package messaging

import "time"

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Delivery statuses reported by the provider for outbound messages.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusFailed    = "failed"
)

// Message is one unit of communication within a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	WaMessageID    string    `json:"wa_message_id,omitempty"`
	Direction      string    `json:"direction"`
	MessageType    string    `json:"message_type"`
	Body           string    `json:"body"`
	MediaRef       string    `json:"media_ref,omitempty"`
	MediaMimeType  string    `json:"media_mime_type,omitempty"`
	Status         string    `json:"status,omitempty"`
	SentBy         string    `json:"sent_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
