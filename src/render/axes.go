package render

import (
	"fmt"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// niceAxisBounds expands [min,max] by a small margin and rounds to "nice" numbers for readability.
func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	// 5% margin on both sides
	pad := span * 0.05
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// countBounds is niceAxisBounds for counts and cumulative totals: keeps a zero
// baseline when all values are non-negative.
func countBounds(min, max float64) (float64, float64) {
	if min >= 0 {
		if max <= 0 {
			max = 1
		}
		_, b := niceAxisBounds(0, max)
		return 0, b
	}
	return niceAxisBounds(min, max)
}

// niceTicks generates up to n tick marks between [min, max] using 1/2/2.5/5 steps.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Ceil(span / step)
		if count < 2 {
			count = 2
		}
		if score := math.Abs(count - float64(n)); score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	ticks := []chart.Tick{}
	for i := 0; ; i++ {
		v := start + float64(i)*bestStep
		if v > end+bestStep/2 || len(ticks) > n+2 {
			break
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
	}
	return ticks
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// pickTimeStep maps a time span to a tick step and label layout.
func pickTimeStep(span time.Duration) (time.Duration, string) {
	switch {
	case span <= 20*time.Second:
		return 2 * time.Second, "15:04:05"
	case span <= 2*time.Minute:
		return 10 * time.Second, "15:04:05"
	case span <= 10*time.Minute:
		return 1 * time.Minute, "15:04"
	case span <= 30*time.Minute:
		return 5 * time.Minute, "15:04"
	case span <= 2*time.Hour:
		return 10 * time.Minute, "15:04"
	case span <= 6*time.Hour:
		return 30 * time.Minute, "Jan 2 15:04"
	case span <= 24*time.Hour:
		return 1 * time.Hour, "Jan 2 15:04"
	case span <= 3*24*time.Hour:
		return 6 * time.Hour, "Jan 2 15:04"
	case span <= 14*24*time.Hour:
		return 24 * time.Hour, "Jan 2"
	default:
		return 7 * 24 * time.Hour, "Jan 2"
	}
}

// makeNiceTimeTicks returns step-aligned ticks between min and max. Labels are UTC.
func makeNiceTimeTicks(minT, maxT time.Time, step time.Duration, labelFmt string) []chart.Tick {
	if step <= 0 {
		return nil
	}
	st := int64(step.Seconds())
	if st <= 0 {
		st = 1
	}
	aligned := time.Unix((minT.Unix()/st)*st, 0).UTC()
	ticks := []chart.Tick{}
	for t := aligned; !t.After(maxT.UTC().Add(step)); t = t.Add(step) {
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(t), Label: t.Format(labelFmt)})
		if len(ticks) > 20 {
			break
		}
	}
	return ticks
}

// timeAxis builds an X axis over bucket times with a non-zero range.
func timeAxis(name string, times []time.Time) chart.XAxis {
	if name == "" {
		name = "Time"
	}
	minT, maxT := times[0], times[len(times)-1]
	step, layout := pickTimeStep(maxT.Sub(minT))
	minF := chart.TimeToFloat64(minT)
	maxF := chart.TimeToFloat64(maxT)
	if maxF <= minF {
		maxF = chart.TimeToFloat64(minT.Add(step))
	}
	var ticks []chart.Tick
	for _, t := range makeNiceTimeTicks(minT, maxT, step, layout) {
		if t.Value >= minF && t.Value <= maxF {
			ticks = append(ticks, t)
		}
	}
	return chart.XAxis{
		Name:  name,
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: minF, Max: maxF},
	}
}

// indexAxis builds an X axis over record positions 1..n.
func indexAxis(name string, n int) chart.XAxis {
	if name == "" {
		name = "Record"
	}
	maxR := float64(n) + 0.5
	if n == 1 {
		maxR = 2
	}
	var ticks []chart.Tick
	for _, t := range niceTicks(1, math.Max(float64(n), 2), 8) {
		if t.Value >= 0.5 && t.Value <= maxR {
			ticks = append(ticks, t)
		}
	}
	return chart.XAxis{
		Name:  name,
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: 0.5, Max: maxR},
	}
}

// valueRange returns min and max over every value of ss ignoring NaN.
func valueRange(values ...[]float64) (float64, float64, bool) {
	min, max := math.MaxFloat64, -math.MaxFloat64
	for _, vs := range values {
		for _, v := range vs {
			if math.IsNaN(v) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	return min, max, min <= max
}
