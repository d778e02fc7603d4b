package flow

// Snapshot is the read-only session view handed to the rendering layer.
type Snapshot struct {
	State State  `json:"state"`
	Mode  string `json:"mode"`

	EditingCallID string `json:"editing_call_id,omitempty"`

	LeadID  string       `json:"lead_id,omitempty"`
	Lead    LeadInput    `json:"lead"`
	Call    CallDraft    `json:"call"`
	Relance RelanceDraft `json:"relance"`
}

const (
	ModeCreate      = "create"
	ModeRelanceEdit = "relance_edit"
)

// Snapshot copies the current session state. Mutating the copy has no
// effect on the flow.
func (f *Flow) Snapshot() Snapshot {
	mode := ModeCreate
	if f.editingCallID != "" {
		mode = ModeRelanceEdit
	}
	return Snapshot{
		State:         f.state,
		Mode:          mode,
		EditingCallID: f.editingCallID,
		LeadID:        f.leadID,
		Lead:          f.lead,
		Call:          f.call,
		Relance:       f.relance,
	}
}
