package main

import "testing"

func TestEnvOrDefaultFallsBackWhenUnset(t *testing.T) {
	t.Setenv("SENTINEL_DEMO_TEST_VAR", "")
	if got := envOrDefault("SENTINEL_DEMO_TEST_VAR", "fallback"); got != "fallback" {
		t.Fatalf("got %q, want %q", got, "fallback")
	}
}

func TestEnvOrDefaultUsesSetValue(t *testing.T) {
	t.Setenv("SENTINEL_DEMO_TEST_VAR", "custom")
	if got := envOrDefault("SENTINEL_DEMO_TEST_VAR", "fallback"); got != "custom" {
		t.Fatalf("got %q, want %q", got, "custom")
	}
}

func TestReadInputPrefersArgument(t *testing.T) {
	got, err := readInput([]string{"hello from args"})
	if err != nil {
		t.Fatalf("readInput: %v", err)
	}
	if got != "hello from args" {
		t.Fatalf("got %q", got)
	}
}

func TestMustBuildLoggerAcceptsEveryLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		logger := mustBuildLogger(level)
		if logger == nil {
			t.Fatalf("mustBuildLogger(%q) returned nil", level)
		}
	}
}
