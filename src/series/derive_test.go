package series

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/iafilius/OrderLogCharts/src/records"
)

func rec(kv ...string) records.Record {
	var fields []records.Field
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, records.Field{Name: kv[i], Value: records.ParseValue(kv[i+1])})
	}
	return records.NewRecord(fields...)
}

func orders(types ...string) []records.Record {
	out := make([]records.Record, len(types))
	for i, typ := range types {
		out[i] = rec("OrderType", typ)
	}
	return out
}

func TestDeriveCumulative_OrderDepth(t *testing.T) {
	set, err := Derive(orders("New", "New", "Cancel", "New"), OrderDepth("depth"))
	require.NoError(t, err)
	s, ok := set.Get("depth")
	require.True(t, ok)
	require.Equal(t, []float64{1, 2, 1, 2}, s.Values)
	require.False(t, s.Bucketed())
}

func TestDeriveCumulative_UnmappedZero(t *testing.T) {
	set, err := Derive(orders("New", "Replace", "New"), OrderDepth("depth"))
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1, 2}, set["depth"].Values)
}

func TestDeriveCumulative_UnmappedError(t *testing.T) {
	m := OrderDepth("depth")
	m.Unmapped = UnmappedError
	_, err := Derive(orders("New", "Replace"), m)
	var ue *UnmappedCategoryError
	require.True(t, errors.As(err, &ue), "got %v", err)
	require.Equal(t, "Replace", ue.Category)
	require.Equal(t, 2, ue.Record)
}

func TestDeriveDirect_StrictAndTolerant(t *testing.T) {
	recs := []records.Record{
		rec("CostMillisecond", "5"),
		rec("Other", "1"),
		rec("CostMillisecond", "abc"),
		rec("CostMillisecond", "7.5"),
	}
	m := Mapping{Name: "cost", Rule: RuleDirect, Field: "CostMillisecond"}

	_, err := Derive(recs, m)
	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf), "got %v", err)
	require.Equal(t, 2, mf.Record)
	require.Equal(t, "CostMillisecond", mf.Field)

	m.Mode = records.Tolerant
	set, err := Derive(recs, m)
	require.NoError(t, err)
	require.Equal(t, []float64{5, 7.5}, set["cost"].Values)
}

func TestDeriveDirect_NullCountsAsMissing(t *testing.T) {
	recs := []records.Record{rec("v", "1"), rec("v", "")}
	_, err := Derive(recs, Mapping{Name: "v", Rule: RuleDirect, Field: "v"})
	require.Error(t, err)
}

func TestDerive_SortCopy(t *testing.T) {
	recs := []records.Record{
		rec("id", "b", "v", "3"),
		rec("id", "a", "v", "1"),
		rec("id", "c", "v", "2"),
	}
	m := Mapping{Name: "v", Rule: RuleDirect, Field: "v", Sort: true}
	set, err := Derive(recs, m)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, set["v"].Values)

	m.SortField = "id"
	set, err = Derive(recs, m)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 3, 2}, set["v"].Values)

	// input order untouched
	first, _ := recs[0].Get("id")
	require.Equal(t, "b", first.Text())
}

func TestDerive_SortMissingKey(t *testing.T) {
	recs := []records.Record{rec("v", "3"), rec("x", "1"), rec("v", "2")}
	m := Mapping{Name: "v", Rule: RuleDirect, Field: "v", Sort: true}
	_, err := Derive(recs, m)
	require.Error(t, err)

	m.Mode = records.Tolerant
	set, err := Derive(recs, m)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 3}, set["v"].Values)
}

func TestDeriveBuckets_ZeroFill(t *testing.T) {
	recs := []records.Record{
		rec("LogTime", "05/17/2024 09:00:01.100000", "OrderType", "New"),
		rec("LogTime", "05/17/2024 09:00:01.900000", "OrderType", "New"),
		rec("LogTime", "05/17/2024 09:00:01.950000", "OrderType", "Cancel"),
		rec("LogTime", "05/17/2024 09:00:04.000001", "OrderType", "Cancel"),
		rec("LogTime", "05/17/2024 09:00:04.500000", "OrderType", "Replace"),
	}
	set, err := Derive(recs, OrderRate(time.Second))
	require.NoError(t, err)
	require.Len(t, set, 2)

	newS := set["New"]
	cancel := set["Cancel"]
	require.Equal(t, []float64{2, 0, 0, 0}, newS.Values)
	require.Equal(t, []float64{1, 0, 0, 1}, cancel.Values)
	require.Len(t, newS.Times, 4)
	require.Equal(t, time.Date(2024, 5, 17, 9, 0, 1, 0, time.UTC), newS.Times[0])
	require.Equal(t, time.Date(2024, 5, 17, 9, 0, 4, 0, time.UTC), newS.Times[3])
}

func TestDeriveBuckets_AutoCategoriesAndPrefix(t *testing.T) {
	recs := []records.Record{
		rec("ts", "2024-05-17T09:00:00Z", "side", "Buy"),
		rec("ts", "2024-05-17T09:00:30Z", "side", "Sell"),
		rec("ts", "2024-05-17T09:02:10Z", "side", "Buy"),
	}
	m := Mapping{Name: "side", Rule: RuleBucketCount, Field: "side", TimeField: "ts", Granularity: time.Minute}
	set, err := Derive(recs, m)
	require.NoError(t, err)
	require.Equal(t, []string{"side:Buy", "side:Sell"}, set.Names())
	require.Equal(t, []float64{1, 0, 1}, set["side:Buy"].Values)
	require.Equal(t, []float64{1, 0, 0}, set["side:Sell"].Values)
}

func TestDeriveBuckets_EpochAndLimit(t *testing.T) {
	recs := []records.Record{
		rec("t", "1715936400", "k", "a"),
		rec("t", "1715936402", "k", "a"),
	}
	m := Mapping{Rule: RuleBucketCount, Field: "k", TimeField: "t"}
	set, err := Derive(recs, m)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0, 1}, set["a"].Values)

	m.MaxBuckets = 2
	_, err = Derive(recs, m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds limit 2")
}

func TestDeriveBuckets_FractionalEpoch(t *testing.T) {
	recs := []records.Record{
		rec("t", "1715936401.25", "k", "a"),
		rec("t", "1715936401.75", "k", "a"),
		rec("t", "1715936401.8", "k", "a"),
	}
	m := Mapping{Rule: RuleBucketCount, Field: "k", TimeField: "t", Granularity: 500 * time.Millisecond}
	set, err := Derive(recs, m)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, set["a"].Values)
	require.Equal(t, time.Unix(1715936401, 0).UTC(), set["a"].Times[0].UTC())

	ms := []records.Record{
		rec("t", "1715936401250", "k", "a"),
		rec("t", "1715936401750", "k", "a"),
	}
	set, err = Derive(ms, m)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1}, set["a"].Values)
}

func TestDeriveBuckets_StrictBadTime(t *testing.T) {
	recs := []records.Record{rec("LogTime", "yesterday", "OrderType", "New")}
	_, err := Derive(recs, OrderRate(0))
	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf), "got %v", err)
	require.Equal(t, "LogTime", mf.Field)
}

func TestDeriveAll_DuplicateNames(t *testing.T) {
	recs := orders("New")
	_, err := DeriveAll(recs, []Mapping{OrderDepth("d"), OrderDepth("d")})
	require.Error(t, err)

	set, err := DeriveAll(recs, []Mapping{OrderDepth("d1"), OrderDepth("d2")})
	require.NoError(t, err)
	require.Equal(t, []string{"d1", "d2"}, set.Names())
}

func TestMappingValidate(t *testing.T) {
	bad := []Mapping{
		{Name: "x", Rule: RuleDirect},
		{Rule: RuleDirect, Field: "f"},
		{Name: "x", Rule: RuleCumulative, Field: "f"},
		{Rule: RuleBucketCount, Field: "f"},
		{Name: "x", Rule: "median", Field: "f"},
		{Name: "x", Rule: RuleDirect, Field: "f", Unmapped: "ignore"},
	}
	for i, m := range bad {
		require.Error(t, m.Validate(), "case %d", i)
	}
	require.NoError(t, OrderDepth("d").Validate())
	require.NoError(t, OrderRate(0).Validate())
}
