package outcome

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		result string
		want   Class
	}{
		{ResultQualified, Final},
		{ResultCancelled, Final},
		{ResultNotInterested, Final},
		{ResultNoAnswer, NeedsFollowUp},
		{ResultUnreachable, NeedsFollowUp},
		{ResultCallback, NeedsFollowUp},
		{ResultPlanned, Unrecognized},
		{"", Unrecognized},
		{"qualifié", Unrecognized},      // case-sensitive by design
		{"A rappeler", Unrecognized},    // accent matters; closed set
		{"Rappel demandé", Unrecognized},
	}
	for _, tc := range cases {
		if got := Classify(tc.result); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.result, got, tc.want)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	for _, r := range []string{ResultQualified, ResultCallback, "garbage"} {
		first := Classify(r)
		for i := 0; i < 3; i++ {
			if got := Classify(r); got != first {
				t.Fatalf("Classify(%q) unstable: %v then %v", r, first, got)
			}
		}
	}
}

func TestRelancePriority(t *testing.T) {
	cases := []struct {
		name                    string
		result, level, selected string
		want                    string
	}{
		{"callback with relance forces P1", ResultCallback, "2", PriorityNormal, PriorityP1},
		{"callback with relance overrides explicit P1 too", ResultCallback, "3", PriorityP1, PriorityP1},
		{"callback without relance stays NORMAL", ResultCallback, RelanceLevelNone, PriorityP1, PriorityNormal},
		{"no answer keeps agent selection", ResultNoAnswer, "2", PriorityP1, PriorityP1},
		{"empty selection defaults to NORMAL", ResultUnreachable, "2", "", PriorityNormal},
		{"level none always NORMAL", ResultQualified, RelanceLevelNone, "", PriorityNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RelancePriority(tc.result, tc.level, tc.selected); got != tc.want {
				t.Fatalf("RelancePriority(%q, %q, %q) = %q, want %q", tc.result, tc.level, tc.selected, got, tc.want)
			}
		})
	}
}
