package pipeline

import (
	"path/filepath"

	"github.com/iafilius/OrderLogCharts/src/records"
	"github.com/iafilius/OrderLogCharts/src/render"
)

// ImageExt is the extension of every rendered chart.
const ImageExt = ".jpg"

// OutputPath names the image for chart given the input path and how many charts
// the job draws. Compression and data extensions are removed from the input;
// an explicit suffix is appended as is. Without a suffix a lone chart takes the
// bare base name and several charts are told apart by kind ("_line_plot").
func OutputPath(input, outputDir string, chart render.ChartSpec, charts int) string {
	if chart.Output != "" {
		return chart.Output
	}
	base := records.StripExtensions(input)
	if outputDir != "" {
		base = filepath.Join(outputDir, filepath.Base(base))
	}
	switch {
	case chart.Suffix != "":
		return base + chart.Suffix + ImageExt
	case charts == 1:
		return base + ImageExt
	default:
		return base + "_" + kindTag(chart.Kind) + "_plot" + ImageExt
	}
}

func kindTag(k render.Kind) string {
	switch k {
	case render.KindHistogram:
		return "hist"
	case render.KindStackedBar:
		return "stacked"
	case render.KindMultiPanel:
		return "panels"
	}
	return string(k)
}
