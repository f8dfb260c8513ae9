package models

import (
	"strings"
	"testing"
	"time"
)

// FuzzNewDomainRecord feeds arbitrary names to the domain constructor and
// checks that it never panics and that every accepted record satisfies the
// name invariants.
func FuzzNewDomainRecord(f *testing.F) {
	f.Add("")
	f.Add("example.com")
	f.Add("Example.COM")
	f.Add("  spaced.example  ")
	f.Add("'; DROP TABLE domains;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add(strings.Repeat("a", 253))
	f.Add(strings.Repeat("a", 254))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f.Fuzz(func(t *testing.T, name string) {
		rec, err := NewDomainRecord(name, "10.0.0.1", "alice", now)
		if err != nil {
			return
		}

		if rec.Name == "" {
			t.Error("accepted record has empty name")
		}
		if len(rec.Name) > 253 {
			t.Errorf("accepted record name exceeds 253 characters: %d", len(rec.Name))
		}
		if rec.Name != NormalizeDomainName(rec.Name) {
			t.Errorf("accepted name %q is not in normalized form", rec.Name)
		}

		// A stored name must refer to the same registration when used again.
		roundTrip, err := NewDomainRecord(rec.Name, "10.0.0.1", "alice", now)
		if err != nil {
			t.Errorf("accepted name %q failed round-trip: %v", rec.Name, err)
			return
		}
		if roundTrip.Name != rec.Name {
			t.Errorf("round-trip changed name: %q != %q", roundTrip.Name, rec.Name)
		}
	})
}

// FuzzNormalizeDomainName checks that normalization is a fixed point, so
// normalizing a stored name never produces a different lookup key.
func FuzzNormalizeDomainName(f *testing.F) {
	f.Add("Example.COM")
	f.Add("  mixed Case.Example\t")
	f.Add("")
	f.Add("ümlaut.example")

	f.Fuzz(func(t *testing.T, input string) {
		once := NormalizeDomainName(input)
		twice := NormalizeDomainName(once)
		if once != twice {
			t.Errorf("normalization is not idempotent: %q -> %q -> %q", input, once, twice)
		}
	})
}
