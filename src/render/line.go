package render

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"

	"github.com/iafilius/OrderLogCharts/src/series"
)

// palette is the fixed series colour order.
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
}

func colorAt(i int) drawing.Color { return palette[i%len(palette)] }

func lineStyle(col drawing.Color, points int) chart.Style {
	st := chart.Style{StrokeColor: col, StrokeWidth: 1.5}
	if points == 1 {
		st.DotColor = col
		st.DotWidth = 5
	}
	return st
}

// lineSeries converts s into a go-chart series. A single point is duplicated one
// step to the right so the backend has a non-zero domain.
func lineSeries(s series.Series, col drawing.Color) chart.Series {
	st := lineStyle(col, s.Len())
	if s.Bucketed() {
		xs := s.Times
		ys := s.Values
		if len(xs) == 1 {
			xs = []time.Time{xs[0], xs[0].Add(time.Second)}
			ys = []float64{ys[0], ys[0]}
		}
		return chart.TimeSeries{Name: s.Name, XValues: xs, YValues: ys, Style: st}
	}
	xs := make([]float64, s.Len())
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	ys := s.Values
	if len(xs) == 1 {
		xs = []float64{1, 2}
		ys = []float64{ys[0], ys[0]}
	}
	return chart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: ys, Style: st}
}

// lineChart builds the go-chart definition for ss sharing one X domain.
func lineChart(ss []series.Series, title, xLabel, yLabel string, w, h int) chart.Chart {
	var xa chart.XAxis
	if ss[0].Bucketed() {
		xa = timeAxis(xLabel, ss[0].Times)
	} else {
		n := 0
		for _, s := range ss {
			if s.Len() > n {
				n = s.Len()
			}
		}
		xa = indexAxis(xLabel, n)
	}
	all := make([][]float64, len(ss))
	cs := make([]chart.Series, len(ss))
	for i, s := range ss {
		all[i] = s.Values
		cs[i] = lineSeries(s, colorAt(i))
	}
	min, max, _ := valueRange(all...)
	lo, hi := countBounds(min, max)
	ch := chart.Chart{
		Title:      title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 36}},
		XAxis:      xa,
		YAxis: chart.YAxis{
			Name:  yLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks: niceTicks(lo, hi, 6),
		},
		Series: cs,
	}
	if len(ss) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

func renderChart(ch chart.Chart) (image.Image, error) {
	return renderPNG(ch.Render)
}

// renderPNG runs a go-chart renderer into memory and decodes the result.
func renderPNG(render func(chart.RendererProvider, io.Writer) error) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func drawLine(ss []series.Series, spec ChartSpec) (image.Image, error) {
	w, h := spec.size()
	for _, s := range ss[1:] {
		if s.Bucketed() != ss[0].Bucketed() {
			return nil, &RenderError{Output: spec.Output, Series: s.Name, Reason: "cannot mix time-bucketed and indexed series on one axis"}
		}
	}
	return renderChart(lineChart(ss, spec.Title, spec.XLabel, spec.YLabel, w, h))
}

// drawPanels renders one line chart per series and stacks them vertically.
func drawPanels(ss []series.Series, spec ChartSpec) (image.Image, error) {
	w, h := spec.size()
	panelH := h / len(ss)
	out := image.NewRGBA(image.Rect(0, 0, w, panelH*len(ss)))
	for i, s := range ss {
		title := s.Name
		if i == 0 && spec.Title != "" {
			title = spec.Title + ": " + s.Name
		}
		yLabel := spec.YLabel
		if yLabel == "" {
			yLabel = s.Name
		}
		img, err := renderChart(lineChart([]series.Series{s}, title, spec.XLabel, yLabel, w, panelH))
		if err != nil {
			return nil, &RenderError{Output: spec.Output, Series: s.Name, Reason: "panel backend failed", Err: err}
		}
		dst := image.Rect(0, i*panelH, w, (i+1)*panelH)
		xdraw.Draw(out, dst, img, img.Bounds().Min, xdraw.Src)
	}
	return out, nil
}
