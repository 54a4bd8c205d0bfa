// Package leads reads and creates CRM lead records. The surrounding CRM owns
// this table; the messaging core only looks leads up by phone and auto-creates
// one when an unknown number writes in.
package leads

import "time"

// Defaults applied to auto-created leads.
const (
	SourceWhatsApp = "WhatsApp"
	StatusNew      = "Nou"
)

// Lead is a CRM contact record, referenced by conversations.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
