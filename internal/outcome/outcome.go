package outcome

// Call result values as logged by agents. Keep these stable; they are part
// of the persistence contract and the classifier matches them exactly.
const (
	ResultQualified     = "Qualifié"
	ResultCancelled     = "Annulé"
	ResultNotInterested = "Pas intéressé"

	ResultNoAnswer    = "Pas de réponse"
	ResultUnreachable = "Injoignable"
	ResultCallback    = "À rappeler"

	// ResultPlanned marks a scheduled relance row that has not been
	// executed yet. It is never logged by an agent directly.
	ResultPlanned = "Planifiée"
)

// Relance priorities.
const (
	PriorityNormal = "NORMAL"
	PriorityP1     = "P1"
)

// RelanceLevelNone is the sentinel level meaning "no follow-up scheduled".
const RelanceLevelNone = "none"

// Class is the scheduling classification of a call result.
type Class int

const (
	// Unrecognized: the value belongs to neither known set. The operation
	// carrying it must be rejected; unknown values are never treated as
	// final. New result values require updating the sets here.
	Unrecognized Class = iota

	// Final: the case is closed, no follow-up is scheduled.
	Final

	// NeedsFollowUp: the lead must be called again.
	NeedsFollowUp
)

func (c Class) String() string {
	switch c {
	case Final:
		return "final"
	case NeedsFollowUp:
		return "needs_follow_up"
	default:
		return "unrecognized"
	}
}

// Classify maps a call result to its class. Exact string match against the
// closed sets; pure function of its input.
func Classify(result string) Class {
	switch result {
	case ResultQualified, ResultCancelled, ResultNotInterested:
		return Final
	case ResultNoAnswer, ResultUnreachable, ResultCallback:
		return NeedsFollowUp
	default:
		return Unrecognized
	}
}

// RelancePriority applies the urgency policy: an explicit callback request
// with a scheduled relance is always P1, overriding the agent's selection.
// With no relance scheduled the priority falls back to NORMAL.
func RelancePriority(result, relanceLevel, selected string) string {
	if relanceLevel == RelanceLevelNone {
		return PriorityNormal
	}
	if result == ResultCallback {
		return PriorityP1
	}
	if selected == "" {
		return PriorityNormal
	}
	return selected
}
