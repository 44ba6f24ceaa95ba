package series

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the bin count for continuous (non-discrete) data.
const DefaultBins = 30

// DefaultMaxBins bounds the number of bins NewHistogram allocates.
const DefaultMaxBins = 100_000

// HistogramOptions selects the binning.
type HistogramOptions struct {
	// Discrete bins integer-valued data one bin per integer between min and max.
	Discrete bool
	// Bins overrides the bin count for continuous data (DefaultBins when zero).
	Bins int
	// MaxBins is the largest bin count accepted (DefaultMaxBins when zero).
	MaxBins int
}

func (o HistogramOptions) maxBins() int {
	if o.MaxBins <= 0 {
		return DefaultMaxBins
	}
	return o.MaxBins
}

// Histogram holds bin edges (len = bins+1) and the count of each bin.
// Bin i covers [Edges[i], Edges[i+1]).
type Histogram struct {
	Edges  []float64
	Counts []float64
}

// Bins returns the number of bins.
func (h Histogram) Bins() int { return len(h.Counts) }

// Total returns the sum of all counts.
func (h Histogram) Total() float64 { return floats.Sum(h.Counts) }

// Centers returns the midpoint of every bin.
func (h Histogram) Centers() []float64 {
	out := make([]float64, len(h.Counts))
	for i := range out {
		out[i] = (h.Edges[i] + h.Edges[i+1]) / 2
	}
	return out
}

// DiscreteBinCount is the number of integers between ceil(min) and floor(max),
// inclusive, and at least 1.
func DiscreteBinCount(min, max float64) int {
	n := int(math.Floor(max)-math.Ceil(min)) + 1
	if n < 1 {
		return 1
	}
	return n
}

func integral(values []float64) bool {
	for _, v := range values {
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}

// NewHistogram bins values. NaN and infinite values are ignored; an empty input
// is an error.
func NewHistogram(values []float64, opts HistogramOptions) (Histogram, error) {
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		x = append(x, v)
	}
	if len(x) == 0 {
		return Histogram{}, errors.New("histogram of empty series")
	}
	sort.Float64s(x)
	min, max := floats.Min(x), floats.Max(x)

	want := float64(opts.Bins)
	if opts.Discrete {
		want = math.Floor(max) - math.Ceil(min) + 1
	}
	if limit := opts.maxBins(); want > float64(limit) {
		return Histogram{}, errors.Newf("values span [%g, %g]: %.0f bins exceeds limit %d", min, max, want, limit)
	}

	var edges []float64
	switch {
	case opts.Discrete && integral(x):
		// unit bins centred on each integer
		n := DiscreteBinCount(min, max)
		edges = make([]float64, n+1)
		start := math.Ceil(min) - 0.5
		for i := range edges {
			edges[i] = start + float64(i)
		}
	default:
		n := opts.Bins
		if opts.Discrete {
			n = DiscreteBinCount(min, max)
		} else if n <= 0 {
			n = DefaultBins
		}
		lo, hi := min, max
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
		edges = make([]float64, n+1)
		floats.Span(edges, lo, hi)
		// stat.Histogram needs the maximum strictly inside the last bin
		edges[n] = math.Nextafter(hi, math.Inf(1))
	}
	counts := stat.Histogram(nil, edges, x, nil)
	return Histogram{Edges: edges, Counts: counts}, nil
}
