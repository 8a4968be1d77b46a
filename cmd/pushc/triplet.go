package main

import (
	"fmt"
	"strings"

	"pushc/internal/config"
)

// tripletSlots is the positional slot order for dash-separated target
// triplets: `x86_64-linux-native-elf-llvm-crt-static-release` fills the
// slots left to right, while `key=value` entries address them by name.
var tripletSlots = []string{
	"arch", "os", "platform", "format", "backend", "runtime", "linkage", "build",
}

// Triplet is the parsed -t value.
type Triplet map[string]string

// ParseTriplet accepts either a comma-separated key=value list or a
// dash-separated positional list over the fixed slot order. Empty input
// yields an empty triplet.
func ParseTriplet(spec string) (Triplet, error) {
	t := Triplet{}
	if spec == "" {
		return t, nil
	}

	if strings.Contains(spec, ",") || strings.Contains(spec, "=") {
		for _, entry := range strings.Split(spec, ",") {
			key, value, found := strings.Cut(strings.TrimSpace(entry), "=")
			if !found || key == "" || value == "" {
				return nil, fmt.Errorf("bad triplet entry %q", entry)
			}
			if !validTripletSlot(key) {
				return nil, fmt.Errorf("unknown triplet slot %q", key)
			}
			t[key] = value
		}
		return t, nil
	}

	parts := strings.Split(spec, "-")
	if len(parts) > len(tripletSlots) {
		return nil, fmt.Errorf("triplet has %d components, at most %d allowed", len(parts), len(tripletSlots))
	}
	for i, part := range parts {
		if part == "" {
			continue
		}
		t[tripletSlots[i]] = part
	}
	return t, nil
}

func validTripletSlot(key string) bool {
	for _, s := range tripletSlots {
		if s == key {
			return true
		}
	}
	return false
}

// Store writes the triplet into the preferences map under triplet.<slot>
// keys, where later passes read them.
func (t Triplet) Store(prefs *config.Preferences) {
	for slot, value := range t {
		prefs.Set("triplet."+slot, value)
	}
}
