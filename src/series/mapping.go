package series

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iafilius/OrderLogCharts/src/records"
)

// Rule names a derivation rule.
type Rule string

const (
	// RuleDirect copies a numeric field verbatim, in record order.
	RuleDirect Rule = "direct"
	// RuleCumulative maps a categorical field to signed deltas and emits the running total.
	RuleCumulative Rule = "cumulative"
	// RuleBucketCount counts categories per fixed time bucket, one series per category.
	RuleBucketCount Rule = "bucket_count"
)

// UnmappedPolicy decides what a cumulative mapping does with a category that has no delta.
type UnmappedPolicy string

const (
	UnmappedZero  UnmappedPolicy = "zero"
	UnmappedError UnmappedPolicy = "error"
)

// DefaultGranularity is the bucket width of RuleBucketCount.
const DefaultGranularity = time.Second

// DefaultMaxBuckets bounds the zero-filled bucket range.
const DefaultMaxBuckets = 1_000_000

// Mapping configures one derivation: which record fields feed which rule.
type Mapping struct {
	// Name of the produced series (direct, cumulative), or a prefix for bucket series.
	Name string `yaml:"name"`
	Rule Rule   `yaml:"rule"`
	// Field is the numeric field (direct) or the categorical field (cumulative, bucket_count).
	Field string `yaml:"field"`

	// bucket_count
	TimeField   string        `yaml:"time_field"`
	TimeLayout  string        `yaml:"time_layout"`
	Granularity time.Duration `yaml:"granularity"`
	Categories  []string      `yaml:"categories"`
	MaxBuckets  int           `yaml:"max_buckets"`

	// cumulative
	Deltas   map[string]int `yaml:"deltas"`
	Unmapped UnmappedPolicy `yaml:"unmapped"`

	// Sort records by SortField (Field when empty) before deriving.
	Sort      bool   `yaml:"sort"`
	SortField string `yaml:"sort_field"`

	Mode records.Mode `yaml:"mode"`
}

// Validate checks that the mapping names everything its rule needs.
func (m Mapping) Validate() error {
	if m.Field == "" {
		return errors.Newf("mapping %q: field is required", m.Name)
	}
	switch m.Rule {
	case RuleDirect, RuleCumulative:
		if m.Name == "" {
			return errors.Newf("mapping on field %q: name is required for rule %s", m.Field, m.Rule)
		}
		if m.Rule == RuleCumulative && len(m.Deltas) == 0 {
			return errors.Newf("mapping %q: cumulative rule needs deltas", m.Name)
		}
	case RuleBucketCount:
		if m.TimeField == "" {
			return errors.Newf("mapping %q: bucket_count rule needs time_field", m.Name)
		}
		if m.Granularity < 0 {
			return errors.Newf("mapping %q: negative granularity %s", m.Name, m.Granularity)
		}
	default:
		return errors.Newf("mapping %q: unknown rule %q", m.Name, m.Rule)
	}
	switch m.Unmapped {
	case "", UnmappedZero, UnmappedError:
	default:
		return errors.Newf("mapping %q: unknown unmapped policy %q", m.Name, m.Unmapped)
	}
	return nil
}

func (m Mapping) sortField() string {
	if m.SortField != "" {
		return m.SortField
	}
	return m.Field
}

func (m Mapping) granularity() time.Duration {
	if m.Granularity <= 0 {
		return DefaultGranularity
	}
	return m.Granularity
}

func (m Mapping) maxBuckets() int {
	if m.MaxBuckets <= 0 {
		return DefaultMaxBuckets
	}
	return m.MaxBuckets
}

// bucketSeriesName returns the series name for one category of a bucket_count mapping.
func (m Mapping) bucketSeriesName(category string) string {
	if m.Name == "" {
		return category
	}
	return m.Name + ":" + category
}

// OrderDepth is the New=+1 / Cancel=-1 cumulative mapping over OrderType.
func OrderDepth(name string) Mapping {
	return Mapping{
		Name:   name,
		Rule:   RuleCumulative,
		Field:  "OrderType",
		Deltas: map[string]int{"New": 1, "Cancel": -1},
	}
}

// OrderRate counts New and Cancel orders per bucket of LogTime.
func OrderRate(granularity time.Duration) Mapping {
	return Mapping{
		Rule:        RuleBucketCount,
		Field:       "OrderType",
		TimeField:   "LogTime",
		TimeLayout:  records.LogTimeLayout,
		Granularity: granularity,
		Categories:  []string{"New", "Cancel"},
	}
}
