package series

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iafilius/OrderLogCharts/src/logging"
	"github.com/iafilius/OrderLogCharts/src/records"
)

// DeriveAll applies every mapping to recs and merges the results. Two mappings
// producing the same series name is an error.
func DeriveAll(recs []records.Record, mappings []Mapping) (Set, error) {
	out := Set{}
	for _, m := range mappings {
		set, err := Derive(recs, m)
		if err != nil {
			return nil, err
		}
		for name, s := range set {
			if _, dup := out[name]; dup {
				return nil, errors.Newf("series %q produced by more than one mapping", name)
			}
			out[name] = s
		}
	}
	return out, nil
}

// Derive applies one mapping to recs. Records are not modified; sorting works on a copy.
func Derive(recs []records.Record, m Mapping) (Set, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	defer logging.TimeTrack(time.Now(), "derive "+string(m.Rule)+" "+m.Field)
	if m.Sort {
		sorted, err := sortRecords(recs, m.sortField(), m.Mode)
		if err != nil {
			return nil, err
		}
		recs = sorted
	}
	var (
		set     Set
		skipped int
		err     error
	)
	switch m.Rule {
	case RuleDirect:
		set, skipped, err = deriveDirect(recs, m)
	case RuleCumulative:
		set, skipped, err = deriveCumulative(recs, m)
	case RuleBucketCount:
		set, skipped, err = deriveBuckets(recs, m)
	}
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		logging.Warnf("[derive] %s rule=%s field=%s: skipped %d of %d record(s) with missing or invalid fields",
			mappingLabel(m), m.Rule, m.Field, skipped, len(recs))
	}
	return set, nil
}

func mappingLabel(m Mapping) string {
	if m.Name != "" {
		return m.Name
	}
	return m.Field
}

// missing returns the strict-mode error, or nil in tolerant mode (caller skips).
func missing(mode records.Mode, idx int, field, reason string) error {
	if mode == records.Tolerant {
		return nil
	}
	return &MissingFieldError{Field: field, Record: idx + 1, Reason: reason}
}

func deriveDirect(recs []records.Record, m Mapping) (Set, int, error) {
	s := Series{Name: m.Name, Values: make([]float64, 0, len(recs))}
	skipped := 0
	for i, rec := range recs {
		v, ok := rec.Get(m.Field)
		if !ok {
			if err := missing(m.Mode, i, m.Field, "missing"); err != nil {
				return nil, 0, err
			}
			skipped++
			continue
		}
		f, ok := v.Float()
		if !ok {
			if err := missing(m.Mode, i, m.Field, "is not numeric ("+v.Text()+")"); err != nil {
				return nil, 0, err
			}
			skipped++
			continue
		}
		s.Values = append(s.Values, f)
	}
	return Set{s.Name: s}, skipped, nil
}

func deriveCumulative(recs []records.Record, m Mapping) (Set, int, error) {
	s := Series{Name: m.Name, Values: make([]float64, 0, len(recs))}
	skipped := 0
	total := 0.0
	for i, rec := range recs {
		v, ok := rec.Get(m.Field)
		if !ok {
			if err := missing(m.Mode, i, m.Field, "missing"); err != nil {
				return nil, 0, err
			}
			skipped++
			continue
		}
		cat := v.Text()
		d, ok := m.Deltas[cat]
		if !ok && m.Unmapped == UnmappedError {
			return nil, 0, &UnmappedCategoryError{Field: m.Field, Category: cat, Record: i + 1}
		}
		total += float64(d)
		s.Values = append(s.Values, total)
	}
	return Set{s.Name: s}, skipped, nil
}

// timeOf extracts an absolute time from v: parsed timestamps, strings in layout (or
// the known layouts), or epoch seconds/milliseconds.
func timeOf(v records.Value, layout string) (time.Time, bool) {
	switch v.Kind {
	case records.KindTime:
		if layout != "" {
			if t, ok := records.ParseTimeLayout(v.Raw, layout); ok {
				return t, true
			}
		}
		return v.Time, true
	case records.KindString:
		return records.ParseTimeLayout(v.Str, layout)
	case records.KindNumber:
		return epochTime(v.Num)
	}
	return time.Time{}, false
}

// epochTime reads n as epoch milliseconds above 1e12, otherwise epoch seconds.
// Fractions are kept to the microsecond.
func epochTime(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}
	sec := n
	if n > 1e12 {
		sec = n / 1000
	}
	whole := math.Floor(sec)
	usec := math.Round((sec - whole) * 1e6)
	return time.Unix(int64(whole), int64(usec)*int64(time.Microsecond)).UTC(), true
}

func deriveBuckets(recs []records.Record, m Mapping) (Set, int, error) {
	g := m.granularity()
	categories := append([]string(nil), m.Categories...)
	tracked := map[string]bool{}
	for _, c := range categories {
		tracked[c] = true
	}
	autoCategories := len(categories) == 0

	counts := map[int64]map[string]int{}
	var first, last time.Time
	observed := 0
	skipped := 0
	for i, rec := range recs {
		tv, ok := rec.Get(m.TimeField)
		if !ok {
			if err := missing(m.Mode, i, m.TimeField, "missing"); err != nil {
				return nil, 0, err
			}
			skipped++
			continue
		}
		t, ok := timeOf(tv, m.TimeLayout)
		if !ok {
			if err := missing(m.Mode, i, m.TimeField, "is not a timestamp ("+tv.Text()+")"); err != nil {
				return nil, 0, err
			}
			skipped++
			continue
		}
		cv, ok := rec.Get(m.Field)
		if !ok {
			if err := missing(m.Mode, i, m.Field, "missing"); err != nil {
				return nil, 0, err
			}
			skipped++
			continue
		}
		b := t.Truncate(g)
		if observed == 0 || b.Before(first) {
			first = b
		}
		if observed == 0 || b.After(last) {
			last = b
		}
		observed++

		cat := cv.Text()
		if autoCategories && !tracked[cat] {
			tracked[cat] = true
			categories = append(categories, cat)
		}
		if !tracked[cat] {
			continue
		}
		key := b.UnixNano()
		if counts[key] == nil {
			counts[key] = map[string]int{}
		}
		counts[key][cat]++
	}

	set := Set{}
	if observed == 0 {
		for _, c := range categories {
			name := m.bucketSeriesName(c)
			set[name] = Series{Name: name, Values: []float64{}, Times: []time.Time{}}
		}
		return set, skipped, nil
	}
	n := int(last.Sub(first)/g) + 1
	if n > m.maxBuckets() {
		return nil, 0, errors.Newf("field %q spans %s to %s: %d buckets of %s exceeds limit %d",
			m.TimeField, first.Format(time.RFC3339), last.Format(time.RFC3339), n, g, m.maxBuckets())
	}
	times := make([]time.Time, n)
	for i := range times {
		times[i] = first.Add(time.Duration(i) * g)
	}
	for _, c := range categories {
		name := m.bucketSeriesName(c)
		vals := make([]float64, n)
		for i, bt := range times {
			vals[i] = float64(counts[bt.UnixNano()][c])
		}
		set[name] = Series{Name: name, Values: vals, Times: times}
	}
	return set, skipped, nil
}

// compareValues orders numbers and times by value and everything else by text.
// Numbers sort before times, times before text.
func compareValues(a, b records.Value) int {
	rank := func(v records.Value) int {
		if _, ok := v.Float(); ok {
			return 0
		}
		if v.Kind == records.KindTime {
			return 1
		}
		return 2
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		fa, _ := a.Float()
		fb, _ := b.Float()
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 1:
		return a.Time.Compare(b.Time)
	}
	return strings.Compare(a.Text(), b.Text())
}

// sortRecords returns a stably sorted copy of recs ordered by field. Records without
// the field fail in strict mode and go last in tolerant mode.
func sortRecords(recs []records.Record, field string, mode records.Mode) ([]records.Record, error) {
	type keyed struct {
		rec records.Record
		v   records.Value
		ok  bool
	}
	ks := make([]keyed, len(recs))
	for i, rec := range recs {
		v, ok := rec.Get(field)
		if !ok && mode == records.Strict {
			return nil, &MissingFieldError{Field: field, Record: i + 1, Reason: "missing (sort key)"}
		}
		ks[i] = keyed{rec: rec, v: v, ok: ok}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].ok != ks[j].ok {
			return ks[i].ok
		}
		if !ks[i].ok {
			return false
		}
		return compareValues(ks[i].v, ks[j].v) < 0
	})
	out := make([]records.Record, len(ks))
	for i, k := range ks {
		out[i] = k.rec
	}
	return out, nil
}
