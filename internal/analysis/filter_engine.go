package analysis

import (
	"churnscope/domain/dataset"
	"churnscope/domain/filter"
	"churnscope/internal/errors"
)

// View is the subset of a Dataset matching a filter set. It keeps a
// reference to its source so downstream builders can reach dataset-level
// facts (category inventories, observed ranges for stable bin edges).
// Views are recomputed per pass and never cached across filter changes.
type View struct {
	Records []dataset.CustomerRecord
	Source  *dataset.Dataset
}

// Size returns the number of records in the view.
func (v *View) Size() int {
	return len(v.Records)
}

// FilterEngine applies a filter set to a dataset. Pure: same inputs, same
// view, no side effects.
type FilterEngine struct{}

// NewFilterEngine creates a new filter engine
func NewFilterEngine() *FilterEngine {
	return &FilterEngine{}
}

// Apply produces the view of d matching every predicate in fs (logical
// AND across attributes). Record order is preserved; this is a stable
// filter, not a sort. Unknown attribute names fail up front.
func (e *FilterEngine) Apply(d *dataset.Dataset, fs filter.Set) (*View, error) {
	if err := fs.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	// Precompile categorical selections into lookup sets.
	selections := make(map[string]map[string]bool, len(fs.Categorical))
	for attr, selected := range fs.Categorical {
		if len(selected) == 0 {
			continue // empty selection means select all
		}
		set := make(map[string]bool, len(selected))
		for _, label := range selected {
			set[label] = true
		}
		selections[attr] = set
	}

	view := &View{Source: d}
	for _, rec := range d.Records {
		if matches(rec, selections, fs.Numeric) {
			view.Records = append(view.Records, rec)
		}
	}
	return view, nil
}

func matches(rec dataset.CustomerRecord, selections map[string]map[string]bool, numeric map[string]*filter.Range) bool {
	for attr, selected := range selections {
		v, _ := rec.CategoricalValue(attr)
		if !selected[v] {
			return false
		}
	}
	for attr, rng := range numeric {
		if rng == nil {
			continue
		}
		v, _ := rec.NumericValue(attr)
		if !rng.Contains(v) {
			return false
		}
	}
	return true
}
