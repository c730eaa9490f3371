package instance

import "testing"

func TestGetIDPrefersExplicitID(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("SPIRELEAP_INSTANCE_ID", "console-a")
	if got := GetID(); got != "console-a" {
		t.Fatalf("expected console-a, got %q", got)
	}
}

func TestGetIDFallsBackToDyno(t *testing.T) {
	t.Setenv("SPIRELEAP_INSTANCE_ID", "")
	t.Setenv("DYNO", "web.2")
	if got := GetID(); got != "web.2" {
		t.Fatalf("expected web.2, got %q", got)
	}
}
