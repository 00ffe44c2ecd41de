// Package detect holds the per-criterion detectors. A detector is a pure,
// total function from a feature model to a tier verdict; it never errors
// and treats absent sub-features as the lowest tier.
package detect

import (
	"fmt"
	"sort"

	"github.com/docuscore/docuscore/internal/features"
)

// Verdict is the raw detector output, not yet bounded to a criterion's
// max points. Reason strings are part of the observable contract: tests
// assert against them, so they stay stable for a given input and tier.
type Verdict struct {
	Passed  bool    `json:"passed"`
	Points  float64 `json:"points"`
	Level   string  `json:"level"`
	Reason  string  `json:"reason"`
	Details any     `json:"details,omitempty"`
}

type Detector interface {
	Evaluate(f *features.FileFeatures) Verdict
}

// Func adapts a plain function to the Detector interface.
type Func func(f *features.FileFeatures) Verdict

func (fn Func) Evaluate(f *features.FileFeatures) Verdict { return fn(f) }

var registry = map[string]Detector{}

// Register installs a detector under a versioned key. Call from init()
// in the per-kind files; later registrations replace earlier ones.
func Register(key string, d Detector) { registry[key] = d }

// Lookup returns the detector for a key. A missing key indicates a
// rubric/detector mismatch and is surfaced to the caller as an error
// condition, never silently defaulted.
func Lookup(key string) (Detector, bool) {
	d, ok := registry[key]
	return d, ok
}

// MustLookup is Lookup for callers that treat a missing key as a
// configuration defect.
func MustLookup(key string) (Detector, error) {
	d, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("detect: no detector registered for key %q", key)
	}
	return d, nil
}

// Keys lists the registered detector keys, sorted.
func Keys() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// alias delegates a kind-scoped key to a shared key. Delegation resolves
// at evaluation time, so the aliased key returns exactly what the shared
// detector returns.
type alias string

func (a alias) Evaluate(f *features.FileFeatures) Verdict {
	d, ok := registry[string(a)]
	if !ok {
		return Verdict{Level: "error", Reason: "delegation target missing: " + string(a)}
	}
	return d.Evaluate(f)
}

func verdict(passed bool, points float64, level, reason string) Verdict {
	return Verdict{Passed: passed, Points: points, Level: level, Reason: reason}
}

func presentation(f *features.FileFeatures) *features.PresentationFeatures {
	if f == nil {
		return nil
	}
	return f.Presentation
}

func document(f *features.FileFeatures) *features.DocumentFeatures {
	if f == nil {
		return nil
	}
	return f.Document
}
