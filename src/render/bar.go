package render

import (
	"fmt"
	"image"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/iafilius/OrderLogCharts/src/series"
)

const (
	barAxisReserve = 120 // pixels taken by the Y axis and padding
	maxBarLabels   = 12
	// MaxCanvasWidth caps the width of bar charts; longer domains switch to a
	// continuous axis instead of widening the image.
	MaxCanvasWidth = 4096
)

// domainLabels labels the shared domain of ss: bucket time or 1-based position.
func domainLabels(s series.Series) []string {
	out := make([]string, s.Len())
	if s.Bucketed() {
		_, layout := pickTimeStep(s.Times[len(s.Times)-1].Sub(s.Times[0]))
		for i, t := range s.Times {
			out[i] = t.UTC().Format(layout)
		}
		return out
	}
	for i := range out {
		out[i] = fmt.Sprintf("%d", i+1)
	}
	return out
}

// labelStride spaces labels so at most maxBarLabels are drawn.
func labelStride(groups int) int {
	return int(math.Max(1, math.Ceil(float64(groups)/maxBarLabels)))
}

// fitBars picks bar width and spacing for n bars within w pixels, widening w when
// even one-pixel bars would not fit. ok is false when that would exceed MaxCanvasWidth.
func fitBars(w, n int) (width, barW, spacing int, ok bool) {
	inner := w - barAxisReserve
	if need := 2 * n; inner < need {
		inner = need
		w = inner + barAxisReserve
	}
	if w > MaxCanvasWidth {
		return 0, 0, 0, false
	}
	slot := inner / n
	spacing = int(math.Max(1, float64(slot)/5))
	barW = int(math.Max(1, float64(slot-spacing)))
	if barW > 60 {
		barW = 60
	}
	return w, barW, spacing, true
}

// drawBar renders grouped bars: for every domain point one bar per series, side by side.
func drawBar(ss []series.Series, spec ChartSpec) (image.Image, error) {
	w, h := spec.size()
	groups := ss[0].Len()
	w, barW, spacing, ok := fitBars(w, groups*len(ss))
	if !ok {
		return drawPlotBars(ss, spec, false)
	}
	labels := domainLabels(ss[0])
	stride := labelStride(groups)

	all := make([][]float64, len(ss))
	for i, s := range ss {
		all[i] = s.Values
	}
	min, max, _ := valueRange(all...)
	lo, hi := countBounds(min, max)

	bars := make([]chart.Value, 0, groups*len(ss))
	for g := 0; g < groups; g++ {
		for i, s := range ss {
			label := ""
			if i == 0 && g%stride == 0 {
				label = labels[g]
			}
			col := colorAt(i)
			bars = append(bars, chart.Value{
				Value: s.Values[g],
				Label: label,
				Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 0},
			})
		}
	}
	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      w,
		Height:     h,
		BarWidth:   barW,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks: niceTicks(lo, hi, 6),
		},
		Bars: bars,
	}
	img, err := renderPNG(bc.Render)
	if err != nil {
		return nil, err
	}
	return decorate(img, ss, spec.XLabel), nil
}

// drawStackedBar renders one stack per domain point with one component per series,
// heights in absolute counts.
func drawStackedBar(ss []series.Series, spec ChartSpec) (image.Image, error) {
	return drawPlotBars(ss, spec, true)
}

func drawPlotBars(ss []series.Series, spec ChartSpec, stacked bool) (image.Image, error) {
	w, h := spec.size()
	if w > MaxCanvasWidth {
		w = MaxCanvasWidth
	}
	p, err := barPlot(ss, spec, stacked, w)
	if err != nil {
		return nil, err
	}
	return drawPlot(p, w, h), nil
}

// barPlot builds a gonum bar plot over domain positions 0..n-1: grouped bars side
// by side, or stacks of absolute values. Stacks reject negative values.
func barPlot(ss []series.Series, spec ChartSpec, stacked bool, w int) (*plot.Plot, error) {
	groups := ss[0].Len()
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Legend.Top = true

	slot := pixels(w-barAxisReserve) / vg.Length(groups)
	barW := slot * 0.8
	if !stacked {
		barW /= vg.Length(len(ss))
	}

	totals := make([]float64, groups)
	var below *plotter.BarChart
	for i, s := range ss {
		if stacked {
			for g, v := range s.Values {
				if v < 0 {
					return nil, &RenderError{Output: spec.Output, Series: s.Name, Reason: fmt.Sprintf("negative value %g cannot be stacked", v)}
				}
				totals[g] += v
			}
		}
		bc, err := plotter.NewBarChart(plotter.Values(s.Values), barW)
		if err != nil {
			return nil, &RenderError{Output: spec.Output, Series: s.Name, Reason: "invalid bar values", Err: err}
		}
		col := colorAt(i)
		bc.Color = col
		bc.LineStyle.Width = 0
		if stacked {
			if below != nil {
				bc.StackOn(below)
			}
			below = bc
		} else {
			bc.Offset = barW * (vg.Length(i) - vg.Length(len(ss)-1)/2)
		}
		p.Add(bc)
		if len(ss) > 1 {
			p.Legend.Add(s.Name, bc)
		}
	}

	var min, max float64
	if stacked {
		min, max, _ = valueRange(totals)
	} else {
		all := make([][]float64, len(ss))
		for i, s := range ss {
			all[i] = s.Values
		}
		min, max, _ = valueRange(all...)
	}
	p.Y.Min, p.Y.Max = countBounds(min, max)
	p.X.Min, p.X.Max = -0.5, float64(groups)-0.5

	labels := domainLabels(ss[0])
	stride := labelStride(groups)
	ticks := make(plot.ConstantTicks, 0, maxBarLabels+1)
	for g := 0; g < groups; g += stride {
		ticks = append(ticks, plot.Tick{Value: float64(g), Label: labels[g]})
	}
	p.X.Tick.Marker = ticks
	return p, nil
}

// decorate adds the legend (more than one series) and the X axis caption, which
// the go-chart bar chart does not draw.
func decorate(img image.Image, ss []series.Series, xLabel string) image.Image {
	if len(ss) > 1 {
		names := make([]string, len(ss))
		for i, s := range ss {
			names[i] = s.Name
		}
		img = drawLegend(img, names)
	}
	if xLabel != "" {
		img = drawCaption(img, xLabel)
	}
	return img
}
