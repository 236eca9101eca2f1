package filter

import (
	"fmt"

	"churnscope/domain/dataset"
)

// Range is an inclusive numeric interval predicate.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v satisfies the predicate. Both ends are
// inclusive.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Set is the full filter state for one session: per-attribute categorical
// selections and numeric ranges. An absent or empty categorical selection
// means "select all", never "select none" — this is what keeps the first
// render from showing an empty dashboard. An absent numeric range means
// the full observed range.
//
// Set is pure data; matching against records is the filter engine's job.
type Set struct {
	Categorical map[string][]string `json:"categorical,omitempty"`
	Numeric     map[string]*Range   `json:"numeric,omitempty"`
}

// AcceptAll returns the default filter state that matches every record.
func AcceptAll() Set {
	return Set{}
}

// Validate checks every attribute name in the set against the schema.
// Unknown names are rejected here, once, rather than being re-checked on
// every record during a pass.
func (s Set) Validate() error {
	for attr := range s.Categorical {
		if !dataset.IsCategoricalColumn(attr) {
			return fmt.Errorf("unknown categorical attribute %q", attr)
		}
	}
	for attr, rng := range s.Numeric {
		if !dataset.IsNumericColumn(attr) {
			return fmt.Errorf("unknown numeric attribute %q", attr)
		}
		if rng != nil && rng.Min > rng.Max {
			return fmt.Errorf("invalid range for %q: min %.4g > max %.4g", attr, rng.Min, rng.Max)
		}
	}
	return nil
}

// IsActive reports whether any predicate narrows the dataset.
func (s Set) IsActive() bool {
	for _, selected := range s.Categorical {
		if len(selected) > 0 {
			return true
		}
	}
	for _, rng := range s.Numeric {
		if rng != nil {
			return true
		}
	}
	return false
}

// ActiveCount returns the number of narrowing predicates, for display.
func (s Set) ActiveCount() int {
	n := 0
	for _, selected := range s.Categorical {
		if len(selected) > 0 {
			n++
		}
	}
	for _, rng := range s.Numeric {
		if rng != nil {
			n++
		}
	}
	return n
}
