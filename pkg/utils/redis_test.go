package utils

import "testing"

func TestGuardScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if guardAcquireScript == nil || guardReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}

func TestSubmitGuardKey(t *testing.T) {
	if got := SubmitGuardKey("alice"); got != "submit_guard:alice" {
		t.Fatalf("key = %q", got)
	}
}
