package leads

import "time"

// Lead is a prospective contact record an agent is working.
//
// Invariants:
// - LeadKey is the external business key (from the CRM export); it is
//   unique and creation is idempotent on it.
// - A lead is immutable after creation except for Phone, which is set by
//   the first recorded call action.
//
// Storage (Postgres): table leads with a UNIQUE constraint on lead_key.
type Lead struct {
	ID      string `json:"lead_id" db:"id"`
	LeadKey string `json:"lead_key" db:"lead_key"`

	// Phone is the normalized number (33XXXXXXXXX), empty until the first
	// call action is recorded.
	Phone string `json:"phone,omitempty" db:"phone"`

	// Projet is the campaign tag the lead belongs to.
	Projet   string `json:"projet" db:"projet"`
	TypeLead string `json:"type_lead" db:"type_lead"`

	// LeadCreatedAt is when the lead appeared upstream, not when this row
	// was inserted. Reactivity KPIs measure against it.
	LeadCreatedAt time.Time `json:"lead_created_at" db:"lead_created_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
