package pipeline

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/iafilius/OrderLogCharts/src/logging"
	"github.com/iafilius/OrderLogCharts/src/records"
	"github.com/iafilius/OrderLogCharts/src/render"
	"github.com/iafilius/OrderLogCharts/src/series"
)

// Result is what one run produced.
type Result struct {
	Outputs []string
	Series  series.Set
	Format  records.Format
	Records int
	Skipped int
}

// Run loads job.Input once, derives every mapping and renders every chart. Charts
// are encoded in memory first, so a failing chart leaves none of the job's outputs
// on disk.
func Run(fs afero.Fs, job Job) (*Result, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	defer logging.TimeTrack(time.Now(), "run "+job.Name+" "+job.Input)
	if err := job.Validate(); err != nil {
		return nil, err
	}
	ds, err := records.Load(fs, job.Input, records.Options{Format: job.Format, Mode: job.Mode})
	if err != nil {
		return nil, err
	}
	logging.Infof("[run] %s: %d %s record(s) from %s", job.Name, ds.Len(), ds.Format, job.Input)

	mappings := append([]series.Mapping(nil), job.Mappings...)
	charts := append([]render.ChartSpec(nil), job.Charts...)
	mappings, charts = expandPanels(ds, mappings, charts)
	for i := range mappings {
		if job.Mode == records.Tolerant {
			mappings[i].Mode = records.Tolerant
		}
	}
	set, err := series.DeriveAll(ds.Records, mappings)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", job.Input)
	}

	res := &Result{Series: set, Format: ds.Format, Records: ds.Len(), Skipped: ds.Skipped}
	seen := map[string]int{}
	for i := range charts {
		out := OutputPath(job.Input, job.OutputDir, charts[i], len(charts))
		if prev, dup := seen[out]; dup {
			return nil, errors.Newf("%s: charts %d and %d both write %s; set a suffix", job.Input, prev, i+1, out)
		}
		seen[out] = i + 1
		charts[i].Output = out
	}
	images := make([][]byte, len(charts))
	for i, c := range charts {
		data, err := render.Encode(set, c)
		if err != nil {
			return nil, err
		}
		images[i] = data
	}
	for i, c := range charts {
		if err := render.Write(fs, c.Output, images[i]); err != nil {
			for _, done := range res.Outputs {
				_ = fs.Remove(done)
			}
			return nil, err
		}
		res.Outputs = append(res.Outputs, c.Output)
		logging.Infof("[run] wrote %s", c.Output)
	}
	return res, nil
}

// expandPanels fills multi-panel charts that name no series with one direct
// mapping per numeric field of the dataset.
func expandPanels(ds *records.Dataset, mappings []series.Mapping, charts []render.ChartSpec) ([]series.Mapping, []render.ChartSpec) {
	var fields []string
	for i, c := range charts {
		if c.Kind != render.KindMultiPanel || len(c.Series) > 0 {
			continue
		}
		if fields == nil {
			fields = numericFields(ds)
			have := map[string]bool{}
			for _, m := range mappings {
				have[m.Name] = true
			}
			for _, f := range fields {
				if !have[f] {
					mappings = append(mappings, series.Mapping{Name: f, Rule: series.RuleDirect, Field: f})
				}
			}
			logging.Debugf("[run] panels over numeric fields %v", fields)
		}
		charts[i].Series = append([]string(nil), fields...)
	}
	return mappings, charts
}

// numericFields returns, in dataset field order, the fields that hold at least one
// value and only numeric values.
func numericFields(ds *records.Dataset) []string {
	out := []string{}
	for _, name := range ds.Fields {
		numeric, seen := true, false
		for _, rec := range ds.Records {
			v, ok := rec.Get(name)
			if !ok {
				continue
			}
			seen = true
			if _, ok := v.Float(); !ok {
				numeric = false
				break
			}
		}
		if numeric && seen {
			out = append(out, name)
		}
	}
	return out
}
