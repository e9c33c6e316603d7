package main

import (
	"testing"

	"tern/internal/config"
	"tern/internal/rt"
	"tern/internal/trace"
)

// Each self-check must pass and release every value it allocates; the doctor
// reports the live count afterwards, so a leaky check would falsify it.
func TestChecksPassAndReleaseEverything(t *testing.T) {
	cfg := config.Default()
	checks := []struct {
		name string
		fn   func(config.Config) error
	}{
		{"refcounts", checkRefcounts},
		{"pool", func(cfg config.Config) error { return checkPool(cfg, trace.Nop()) }},
		{"channel", checkChannel},
		{"atomic", checkAtomic},
	}
	for _, c := range checks {
		before := rt.LiveCount()
		if err := c.fn(cfg); err != nil {
			t.Fatalf("%s check failed: %v", c.name, err)
		}
		if after := rt.LiveCount(); after != before {
			t.Fatalf("%s check leaked %d values", c.name, after-before)
		}
	}
}
