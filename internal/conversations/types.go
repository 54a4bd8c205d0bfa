// Package conversations owns the WhatsApp conversation records: one thread
// per external phone identifier, with last-message aggregates and an optional
// CRM lead link.
package conversations

import "time"

// Conversation is one messaging thread keyed by the provider phone identifier.
type Conversation struct {
	ID            string    `json:"id"`
	WaPhone       string    `json:"wa_phone"`
	WaName        string    `json:"wa_name"`
	LeadID        string    `json:"lead_id,omitempty"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// LinkRequest asks for a conversation for the given phone, optionally
// attaching a lead. Phone may arrive in any format; it is reduced to bare
// digits before lookup.
type LinkRequest struct {
	LeadID string
	Phone  string
	Name   string
}
