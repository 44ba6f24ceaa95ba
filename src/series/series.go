// Package series turns loaded records into named numeric series according to
// field mappings: direct extraction, event-delta cumulative sums and zero-filled
// time-bucketed category counts.
package series

import (
	"sort"
	"time"
)

// Series is a named ordered sequence of values. Times is set for time-bucketed
// series and then has the same length as Values (bucket start per value).
type Series struct {
	Name   string
	Values []float64
	Times  []time.Time
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Values) }

// Bucketed reports whether the series is indexed by bucket time.
func (s Series) Bucketed() bool { return s.Times != nil }

// Last returns the final value (0 for an empty series).
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

// Set maps series name to series.
type Set map[string]Series

// Get returns the named series.
func (s Set) Get(name string) (Series, bool) {
	v, ok := s[name]
	return v, ok
}

// Names returns the series names sorted.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
