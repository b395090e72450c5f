// Package offset maps raw buffer indexes onto the logical positions a schema
// was authored against.
//
// Controller firmware revisions insert and remove bytes in their frame
// layouts, so a catalog written for one revision drifts against the bytes of
// another. A Table records those drifts as (threshold, delta) pairs. Apply
// folds them in order: starting from the raw index, each pair whose threshold
// is at or below the current adjusted value adds its delta, and later pairs
// see the result of earlier ones. An empty Table is the identity mapping.
package offset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnordered is returned by Validate when thresholds are not ascending.
var ErrUnordered = errors.New("correction thresholds are not in ascending order")

// Correction adds Delta to any adjusted index that has reached Threshold.
type Correction struct {
	Threshold int `yaml:"threshold" toml:"threshold" json:"threshold"`
	Delta     int `yaml:"delta" toml:"delta" json:"delta"`
}

// String returns the correction as "(threshold, ±delta)"
func (c Correction) String() string {
	return fmt.Sprintf("(%d, %+d)", c.Threshold, c.Delta)
}

// Table is an ordered list of corrections.
type Table []Correction

// Apply returns the logical position for a raw buffer index.
func (t Table) Apply(raw int) int {
	pos := raw
	for _, c := range t {
		if pos >= c.Threshold {
			pos += c.Delta
		}
	}
	return pos
}

// Validate reports ErrUnordered if a threshold is lower than the one before it.
func (t Table) Validate() error {
	for i := 1; i < len(t); i++ {
		if t[i].Threshold < t[i-1].Threshold {
			return fmt.Errorf("%w: %v follows %v", ErrUnordered, t[i], t[i-1])
		}
	}
	return nil
}

// WithBase returns a copy of t with a leading (0, base) correction, which
// shifts every raw index by base before the other corrections apply. A zero
// base returns t unchanged.
func (t Table) WithBase(base int) Table {
	if base == 0 {
		return t
	}
	out := make(Table, 0, len(t)+1)
	out = append(out, Correction{Threshold: 0, Delta: base})
	return append(out, t...)
}

// String renders the table as a bracketed list
func (t Table) String() string {
	parts := make([]string, len(t))
	for i, c := range t {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
