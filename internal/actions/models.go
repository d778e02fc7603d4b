package actions

import "time"

// CallAction is one row of the call journal: either an executed call
// (DoneAt set) or a planned relance (NextCallAt set, DoneAt empty).
// Completing a relance fills DoneAt and clears NextCallAt on the same row.
//
// Storage (Postgres): table calls, FK lead_id -> leads(id).
type CallAction struct {
	ID     string `json:"call_id" db:"id"`
	LeadID string `json:"lead_id" db:"lead_id"`

	Agent string `json:"agent" db:"agent"`

	// AttemptLevel is the ordinal position of this attempt for the lead
	// (1 = first call). A planned relance carries the next level.
	AttemptLevel int `json:"attempt_level" db:"attempt_level"`

	Result   string `json:"result" db:"result"`
	Priority string `json:"priority" db:"priority"`

	NextCallAt *time.Time `json:"next_call_at,omitempty" db:"next_call_at"`
	DoneAt     *time.Time `json:"done_at,omitempty" db:"done_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Filter narrows listings by campaign tag and lead type.
type Filter struct {
	Projet   string
	TypeLead string
}

// RelanceItem is one pending relance joined with its lead, ordered by due
// instant for the agent worklist.
type RelanceItem struct {
	CallID       string    `json:"call_id"`
	LeadKey      string    `json:"lead_key"`
	Phone        string    `json:"phone"`
	Projet       string    `json:"projet"`
	TypeLead     string    `json:"type_lead"`
	Agent        string    `json:"agent"`
	AttemptLevel int       `json:"attempt_level"`
	Priority     string    `json:"priority"`
	NextCallAt   time.Time `json:"next_call_at"`
}

// CallItem is one executed call joined with its lead, for the history view.
type CallItem struct {
	CallID       string    `json:"call_id"`
	LeadKey      string    `json:"lead_key"`
	Phone        string    `json:"phone"`
	Projet       string    `json:"projet"`
	TypeLead     string    `json:"type_lead"`
	Agent        string    `json:"agent"`
	AttemptLevel int       `json:"attempt_level"`
	Result       string    `json:"result"`
	Priority     string    `json:"priority"`
	DoneAt       time.Time `json:"done_at"`
}

// FollowUpContext is everything the follow-up editor needs to rehydrate a
// call flow from a pending relance.
type FollowUpContext struct {
	CallID       string     `json:"call_id"`
	LeadID       string     `json:"lead_id"`
	Agent        string     `json:"agent"`
	AttemptLevel int        `json:"attempt_level"`
	Priority     string     `json:"priority"`
	NextCallAt   *time.Time `json:"next_call_at,omitempty"`

	LeadKey       string    `json:"lead_key"`
	Phone         string    `json:"phone"`
	Projet        string    `json:"projet"`
	TypeLead      string    `json:"type_lead"`
	LeadCreatedAt time.Time `json:"lead_created_at"`
}
