package render

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/iafilius/OrderLogCharts/src/series"
)

const plotDPI = 96

// maxLabelledBins is the bin count up to which every discrete bin centre gets a tick.
const maxLabelledBins = 40

func pixels(px int) vg.Length { return vg.Length(px) * vg.Inch / plotDPI }

// drawHistogram bins the single series and draws frequency per bin.
func drawHistogram(ss []series.Series, spec ChartSpec) (image.Image, error) {
	s := ss[0]
	hist, err := series.NewHistogram(s.Values, series.HistogramOptions{Discrete: spec.Discrete, Bins: spec.Bins})
	if err != nil {
		return nil, &RenderError{Output: spec.Output, Series: s.Name, Reason: "cannot bin values", Err: err}
	}
	w, h := spec.size()

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = s.Name
	}
	p.Y.Label.Text = spec.YLabel
	if p.Y.Label.Text == "" {
		p.Y.Label.Text = "Frequency"
	}

	bins := make([]plotter.HistogramBin, hist.Bins())
	maxCount := 0.0
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: hist.Edges[i], Max: hist.Edges[i+1], Weight: hist.Counts[i]}
		if hist.Counts[i] > maxCount {
			maxCount = hist.Counts[i]
		}
	}
	bars := &plotter.Histogram{
		Bins:      bins,
		Width:     hist.Edges[1] - hist.Edges[0],
		FillColor: color.RGBA{R: 31, G: 119, B: 180, A: 255},
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(bars)
	p.Add(plotter.NewGrid())

	_, top := countBounds(0, maxCount)
	p.Y.Min, p.Y.Max = 0, top
	p.X.Min, p.X.Max = hist.Edges[0], hist.Edges[len(hist.Edges)-1]
	if spec.Discrete && hist.Bins() <= maxLabelledBins {
		ticks := make(plot.ConstantTicks, 0, hist.Bins())
		for _, c := range hist.Centers() {
			ticks = append(ticks, plot.Tick{Value: c, Label: fmt.Sprintf("%g", c)})
		}
		p.X.Tick.Marker = ticks
	}

	return drawPlot(p, w, h), nil
}

// drawPlot rasterises p at w x h pixels.
func drawPlot(p *plot.Plot, w, h int) image.Image {
	c := vgimg.NewWith(vgimg.UseWH(pixels(w), pixels(h)), vgimg.UseDPI(plotDPI))
	p.Draw(draw.New(c))
	return c.Image()
}
