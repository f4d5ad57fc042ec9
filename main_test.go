package main

import (
	"testing"

	"media-orchestrator/internal/config"
)

// Every capability wired at startup must correspond to a feature flag
// in some media type's default configuration, and its provider section
// must exist.
func TestCapabilityProvidersMatchDefaults(t *testing.T) {
	cfg := config.New()

	known := make(map[string]bool)
	for _, section := range []string{"video", "audio", "image"} {
		for name := range cfg.Section(section + ".features") {
			known[name] = true
		}
	}

	for name, section := range capabilityProviders {
		if !known[name] {
			t.Errorf("capability %q has no feature flag in any media type section", name)
		}
		if len(cfg.Section("providers."+section)) == 0 {
			t.Errorf("capability %q references missing provider section %q", name, section)
		}
	}

	for name := range known {
		if _, ok := capabilityProviders[name]; !ok {
			t.Errorf("feature flag %q has no provider mapping", name)
		}
	}
}
