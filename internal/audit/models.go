package audit

import "time"

// Event is an immutable, append-only record of operator activity.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor and ip capture are best-effort; a failing audit write must
//   never block the call flow that produced it.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: partition by time for retention.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event, when the
	// request carried credentials; Agent is the desk name entered in the
	// flow and may differ.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	Agent       string `json:"agent,omitempty" db:"agent"`

	// IPAddress is the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers, depending on the event type.
	LeadID string `json:"lead_id,omitempty" db:"lead_id"`
	CallID string `json:"call_id,omitempty" db:"call_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLeadCreated      EventType = "lead_created"
	EventTypeCallRecorded     EventType = "call_recorded"
	EventTypeRelanceCompleted EventType = "relance_completed"
)
