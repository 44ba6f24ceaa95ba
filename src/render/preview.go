package render

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/iafilius/OrderLogCharts/src/series"
)

// PreviewWidth is the default terminal plot width in columns.
const PreviewWidth = 72

// Preview plots the named series of set as text for a terminal. Missing or empty
// series are noted instead of plotted.
func Preview(set series.Set, names []string, width int) string {
	if width <= 0 {
		width = PreviewWidth
	}
	var b strings.Builder
	for _, name := range names {
		s, ok := set.Get(name)
		if !ok || s.Len() == 0 {
			fmt.Fprintf(&b, "%s: no data\n", name)
			continue
		}
		values := s.Values
		if len(values) == 1 {
			values = []float64{values[0], values[0]}
		}
		caption := fmt.Sprintf("%s (%d points, last %g)", name, s.Len(), s.Last())
		b.WriteString(asciigraph.Plot(values, asciigraph.Height(10), asciigraph.Width(width), asciigraph.Caption(caption)))
		b.WriteString("\n\n")
	}
	return b.String()
}
