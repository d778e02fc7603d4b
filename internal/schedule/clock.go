package schedule

import "time"

// Business-hours policy for follow-up calls.
//
// All hours are local to the instant's location (the API runs on
// Europe/Paris time; see config.Timezone).
const (
	// CallBuffer is added before clamping so the agent has breathing room
	// between logging a call and the earliest acceptable callback.
	CallBuffer = 3 * time.Hour

	// OpenHour is the earliest callback hour, every day.
	OpenHour = 9
)

// CloseHour returns the last eligible callback hour (exclusive) for a day.
// Weekdays close at 19:00, weekends at 18:00. Sundays are excluded from
// scheduling entirely; NextCallTime skips them after clamping.
func CloseHour(day time.Weekday) int {
	if day == time.Saturday || day == time.Sunday {
		return 18
	}
	return 19
}

// NextCallTime computes the next eligible callback instant from base.
//
// Rules, applied in order on base+CallBuffer:
//  1. before OpenHour  -> clamp to OpenHour the same day
//  2. at/after close   -> OpenHour the next day
//  3. lands on Sunday  -> OpenHour on Monday
//
// The close hour is evaluated once, on the buffered instant. Re-applying
// NextCallTime to an already-valid instant re-adds the buffer and may push
// the result further out; callers that want a stable instant must keep the
// first result rather than recompute.
func NextCallTime(base time.Time) time.Time {
	d := base.Add(CallBuffer)
	close := CloseHour(d.Weekday())

	if d.Hour() < OpenHour {
		d = atOpen(d)
	}
	if d.Hour() >= close {
		d = atOpen(d.AddDate(0, 0, 1))
	}
	if d.Weekday() == time.Sunday {
		d = atOpen(d.AddDate(0, 0, 1))
	}
	return d
}

// InBusinessHours reports whether t falls inside the calling window of
// its own day. Reporting uses it to scope reactivity measurements to
// leads that arrived while an agent could have picked up the phone.
func InBusinessHours(t time.Time) bool {
	return t.Hour() >= OpenHour && t.Hour() < CloseHour(t.Weekday())
}

func atOpen(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), OpenHour, 0, 0, 0, t.Location())
}
