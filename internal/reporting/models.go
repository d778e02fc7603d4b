package reporting

import "time"

// Filter narrows reporting to one campaign segment. Empty fields match
// everything.
type Filter struct {
	Projet   string `json:"projet,omitempty"`
	TypeLead string `json:"type_lead,omitempty"`
}

// LeadActivity is one lead with its call history summarized.
//
// Reactivity is the delay between the lead arriving and the first
// executed call. It is only measured (in scope) when the lead arrived
// inside business hours; a lead that came in overnight says nothing
// about how fast the desk reacts.
type LeadActivity struct {
	LeadID        string    `json:"lead_id"`
	LeadKey       string    `json:"lead_key"`
	Phone         string    `json:"phone"`
	Projet        string    `json:"projet"`
	TypeLead      string    `json:"type_lead"`
	LeadCreatedAt time.Time `json:"lead_created_at"`

	LastResult string     `json:"last_result,omitempty"`
	LastDoneAt *time.Time `json:"last_done_at,omitempty"`
	CallCount  int        `json:"call_count"`

	// FirstCallAt is when the earliest executed call was recorded. The
	// service derives the reactivity fields from it.
	FirstCallAt *time.Time `json:"-"`

	ReactivityMinutes *int `json:"reactivity_minutes,omitempty"`
	ReactivityInScope bool `json:"reactivity_in_scope"`
}

// Dashboard aggregates the desk's KPIs over every lead matching the
// filter.
//
// Combativité is executed calls per lead. The réactivité figures are
// computed over in-scope leads only; the mean and median are nil when
// nothing was measured.
type Dashboard struct {
	LeadsTotal int `json:"leads_total"`
	CallsTotal int `json:"calls_total"`

	CombativiteCallsPerLead float64 `json:"combativite_calls_per_lead"`

	ReactiviteMeanMinutes   *float64 `json:"reactivite_mean_minutes"`
	ReactiviteMedianMinutes *float64 `json:"reactivite_median_minutes"`
	ReactivitePctUnder45    float64  `json:"reactivite_pct_under_45"`
}
