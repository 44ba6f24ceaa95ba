package pipeline

import (
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/iafilius/OrderLogCharts/src/records"
	"github.com/iafilius/OrderLogCharts/src/render"
	"github.com/iafilius/OrderLogCharts/src/series"
)

// Built-in profile names.
const (
	ProfileHist   = "hist"
	ProfileRate   = "rate"
	ProfileDepth  = "depth"
	ProfileCombo  = "combo"
	ProfilePanels = "panels"
	ProfileSorted = "sorted"
)

// Default field names of the extracted latency and order files.
const (
	CostField      = "CostMillisecond"
	OrderTypeField = "OrderType"
	DepthSeries    = "OpenOrders"
)

// ProfileOptions tune a built-in profile.
type ProfileOptions struct {
	Format      records.Format
	Mode        records.Mode
	Field       string        // hist, sorted: numeric field; depth: category field
	Fields      []string      // panels; empty means every numeric field
	Granularity time.Duration // rate, combo
}

// ProfileNames lists the built-in profiles.
func ProfileNames() []string {
	names := []string{ProfileHist, ProfileRate, ProfileDepth, ProfileCombo, ProfilePanels, ProfileSorted}
	sort.Strings(names)
	return names
}

// Auto picks the built-in profile for input by its format: latency tables
// (CSV, XLSX) get the histogram, order event logs (JSON lines) the combo.
func Auto(input string, format records.Format) string {
	if format == records.FormatAuto {
		format = records.DetectFormat(input)
	}
	if format == records.FormatJSONL {
		return ProfileCombo
	}
	return ProfileHist
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func rateParts(g time.Duration) (series.Mapping, render.ChartSpec) {
	m := series.OrderRate(g)
	if g <= 0 {
		g = series.DefaultGranularity
	}
	title := "Orders per Second"
	if g != time.Second {
		title = "Orders per " + g.String()
	}
	return m, render.ChartSpec{
		Kind:   render.KindBar,
		Title:  title,
		XLabel: "Time",
		YLabel: "Number of Orders",
		Series: []string{"New", "Cancel"},
	}
}

func depthParts(field string) (series.Mapping, render.ChartSpec) {
	m := series.OrderDepth(DepthSeries)
	m.Field = orDefault(field, OrderTypeField)
	return m, render.ChartSpec{
		Kind:   render.KindLine,
		Title:  "Order Book Dynamics",
		XLabel: "Order Number",
		YLabel: "Orders on Order Book",
		Series: []string{DepthSeries},
	}
}

// Profile builds the job of a built-in profile for input.
func Profile(name, input string, opts ProfileOptions) (Job, error) {
	job := Job{Name: name, Input: input, Format: opts.Format, Mode: opts.Mode}
	switch name {
	case ProfileHist:
		field := orDefault(opts.Field, CostField)
		job.Mappings = []series.Mapping{{Name: field, Rule: series.RuleDirect, Field: field}}
		job.Charts = []render.ChartSpec{{
			Kind:     render.KindHistogram,
			Title:    field + " Distribution",
			XLabel:   field,
			YLabel:   "Frequency",
			Series:   []string{field},
			Discrete: true,
		}}
	case ProfileRate:
		m, c := rateParts(opts.Granularity)
		job.Mappings = []series.Mapping{m}
		job.Charts = []render.ChartSpec{c}
	case ProfileDepth:
		m, c := depthParts(opts.Field)
		c.Suffix = "_num"
		job.Mappings = []series.Mapping{m}
		job.Charts = []render.ChartSpec{c}
	case ProfileCombo:
		dm, dc := depthParts("")
		rm, rc := rateParts(opts.Granularity)
		job.Mappings = []series.Mapping{dm, rm}
		job.Charts = []render.ChartSpec{dc, rc}
	case ProfilePanels:
		for _, f := range opts.Fields {
			job.Mappings = append(job.Mappings, series.Mapping{Name: f, Rule: series.RuleDirect, Field: f})
		}
		job.Charts = []render.ChartSpec{{
			Kind:   render.KindMultiPanel,
			Title:  "Cost Breakdown",
			XLabel: "Record",
			Series: append([]string(nil), opts.Fields...),
		}}
	case ProfileSorted:
		field := orDefault(opts.Field, CostField)
		job.Mappings = []series.Mapping{{Name: field, Rule: series.RuleDirect, Field: field, Sort: true}}
		job.Charts = []render.ChartSpec{{
			Kind:   render.KindLine,
			Title:  field + " Sorted",
			XLabel: "Rank",
			YLabel: field,
			Series: []string{field},
			Suffix: "_sorted",
		}}
	default:
		return Job{}, errors.Newf("unknown profile %q (want one of %v)", name, ProfileNames())
	}
	return job, nil
}
