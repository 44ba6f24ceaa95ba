// Package render draws derived series as JPEG charts: histograms, line charts,
// grouped and stacked bar charts and vertically stacked multi-panel line charts.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/iafilius/OrderLogCharts/src/logging"
	"github.com/iafilius/OrderLogCharts/src/series"
)

// Kind names a chart type.
type Kind string

const (
	KindHistogram  Kind = "histogram"
	KindLine       Kind = "line"
	KindBar        Kind = "bar"
	KindStackedBar Kind = "stacked_bar"
	KindMultiPanel Kind = "multi_panel"
)

// ParseKind validates a chart kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindHistogram, KindLine, KindBar, KindStackedBar, KindMultiPanel:
		return k, nil
	}
	return "", errors.Newf("unknown chart kind %q", s)
}

// Default image sizes in pixels.
const (
	DefaultWidth       = 1100
	DefaultHeight      = 400
	DefaultPanelHeight = 260
	// JPEGQuality is fixed so equal input renders equal bytes.
	JPEGQuality = 90
)

// ChartSpec describes one chart.
type ChartSpec struct {
	Kind   Kind     `yaml:"kind"`
	Title  string   `yaml:"title"`
	XLabel string   `yaml:"x_label"`
	YLabel string   `yaml:"y_label"`
	Series []string `yaml:"series"`
	// Output is the target file; filled by the pipeline from Suffix when empty.
	Output string `yaml:"output"`
	Suffix string `yaml:"suffix"`
	// histogram binning; Discrete is the default for profiles over integral data
	Discrete bool `yaml:"discrete"`
	Bins     int  `yaml:"bins"`
	Width    int  `yaml:"width"`
	Height   int  `yaml:"height"`
}

func (c ChartSpec) size() (int, int) {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
		if c.Kind == KindMultiPanel {
			h = DefaultPanelHeight * len(c.Series)
		}
	}
	return w, h
}

// RenderError reports a chart that could not be produced. No output file exists
// when it is returned.
type RenderError struct {
	Output string
	Series string
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	msg := "render " + e.Output
	if e.Series != "" {
		msg += fmt.Sprintf(" series %q", e.Series)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error { return e.Err }

// Render draws spec from set and writes exactly one JPEG at spec.Output.
func Render(fs afero.Fs, set series.Set, spec ChartSpec) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := Encode(set, spec)
	if err != nil {
		return err
	}
	return Write(fs, spec.Output, data)
}

// Write stores an encoded chart at path via a temp file renamed into place.
func Write(fs afero.Fs, path string, data []byte) error {
	if err := writeAtomic(fs, path, data); err != nil {
		return &RenderError{Output: path, Reason: "write failed", Err: err}
	}
	logging.Debugf("[render] wrote %s (%s)", path, humanize.Bytes(uint64(len(data))))
	return nil
}

// Encode draws spec from set and returns the JPEG bytes without touching disk.
func Encode(set series.Set, spec ChartSpec) ([]byte, error) {
	defer logging.TimeTrack(time.Now(), "render "+spec.Output)
	if spec.Output == "" {
		return nil, &RenderError{Reason: "no output path"}
	}
	if len(spec.Series) == 0 {
		return nil, &RenderError{Output: spec.Output, Reason: "no series requested"}
	}
	picked, err := pick(set, spec)
	if err != nil {
		return nil, err
	}
	var img image.Image
	switch spec.Kind {
	case KindHistogram:
		img, err = drawHistogram(picked, spec)
	case KindLine:
		img, err = drawLine(picked, spec)
	case KindBar:
		img, err = drawBar(picked, spec)
	case KindStackedBar:
		img, err = drawStackedBar(picked, spec)
	case KindMultiPanel:
		img, err = drawPanels(picked, spec)
	default:
		return nil, &RenderError{Output: spec.Output, Reason: fmt.Sprintf("unknown chart kind %q", spec.Kind)}
	}
	if err != nil {
		var re *RenderError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &RenderError{Output: spec.Output, Reason: string(spec.Kind) + " backend failed", Err: err}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, &RenderError{Output: spec.Output, Reason: "jpeg encode failed", Err: err}
	}
	return buf.Bytes(), nil
}

// pick resolves the requested series in request order and checks the shape the
// chart kind needs.
func pick(set series.Set, spec ChartSpec) ([]series.Series, error) {
	out := make([]series.Series, 0, len(spec.Series))
	for _, name := range spec.Series {
		s, ok := set.Get(name)
		if !ok {
			return nil, &RenderError{Output: spec.Output, Series: name, Reason: "series not found"}
		}
		if s.Len() == 0 {
			return nil, &RenderError{Output: spec.Output, Series: name, Reason: "series is empty"}
		}
		out = append(out, s)
	}
	switch spec.Kind {
	case KindHistogram:
		if len(out) != 1 {
			return nil, &RenderError{Output: spec.Output, Reason: fmt.Sprintf("histogram takes one series, got %d", len(out))}
		}
	case KindBar, KindStackedBar:
		for _, s := range out[1:] {
			if s.Len() != out[0].Len() {
				return nil, &RenderError{Output: spec.Output, Series: s.Name,
					Reason: fmt.Sprintf("length %d differs from %q (%d)", s.Len(), out[0].Name, out[0].Len())}
			}
		}
	}
	return out, nil
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = fs.Remove(name)
		return errors.Wrapf(err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(name)
		return errors.Wrapf(err, "close %s", name)
	}
	if err := fs.Rename(name, path); err != nil {
		_ = fs.Remove(name)
		return errors.Wrapf(err, "rename to %s", path)
	}
	return nil
}
