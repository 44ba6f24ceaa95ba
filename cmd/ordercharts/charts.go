package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/iafilius/OrderLogCharts/src/logging"
	"github.com/iafilius/OrderLogCharts/src/pipeline"
	"github.com/iafilius/OrderLogCharts/src/render"
)

type chartFlags struct {
	field       string
	fields      []string
	granularity time.Duration
}

var profileHelp = map[string]string{
	pipeline.ProfileHist:   "Histogram of a latency column (default CostMillisecond) -> <base>.jpg",
	pipeline.ProfileRate:   "New/Cancel orders per time bucket as grouped bars -> <base>.jpg",
	pipeline.ProfileDepth:  "Cumulative open orders (New +1, Cancel -1) -> <base>_num.jpg",
	pipeline.ProfileCombo:  "Depth line and rate bars -> <base>_line_plot.jpg, <base>_bar_plot.jpg",
	pipeline.ProfilePanels: "One line panel per numeric column -> <base>.jpg",
	pipeline.ProfileSorted: "Latency column sorted ascending -> <base>_sorted.jpg",
}

func (a *app) chartCmds() []*cobra.Command {
	var cmds []*cobra.Command
	for _, name := range pipeline.ProfileNames() {
		name := name
		var cf chartFlags
		cmd := &cobra.Command{
			Use:   name + " <input>",
			Short: profileHelp[name],
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runProfile(name, args[0], cf)
			},
		}
		switch name {
		case pipeline.ProfileHist, pipeline.ProfileSorted:
			cmd.Flags().StringVar(&cf.field, "field", pipeline.CostField, "Numeric field to chart")
		case pipeline.ProfileDepth:
			cmd.Flags().StringVar(&cf.field, "field", pipeline.OrderTypeField, "Categorical field holding New/Cancel")
		case pipeline.ProfileRate, pipeline.ProfileCombo:
			cmd.Flags().DurationVar(&cf.granularity, "granularity", time.Second, "Bucket width")
		case pipeline.ProfilePanels:
			cmd.Flags().StringSliceVar(&cf.fields, "fields", nil, "Fields to chart, one panel each (default: every numeric field)")
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func (a *app) runAuto(input string) error {
	opts, err := a.loadOptions()
	if err != nil {
		return err
	}
	name := pipeline.Auto(input, opts.Format)
	logging.Debugf("[cli] %s: using profile %s", input, name)
	return a.runProfile(name, input, chartFlags{})
}

func (a *app) runProfile(name, input string, cf chartFlags) error {
	opts, err := a.loadOptions()
	if err != nil {
		return err
	}
	job, err := pipeline.Profile(name, input, pipeline.ProfileOptions{
		Format:      opts.Format,
		Mode:        opts.Mode,
		Field:       cf.field,
		Fields:      cf.fields,
		Granularity: cf.granularity,
	})
	if err != nil {
		return err
	}
	return a.runJob(job)
}

func (a *app) runCmd() *cobra.Command {
	var profile, outputDir string
	cmd := &cobra.Command{
		Use:   "run --profile job.yaml [input]",
		Short: "Run a job described in a YAML profile; input overrides the profile's input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := pipeline.LoadProfile(a.fs, profile)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				job.Input = args[0]
			}
			if outputDir != "" {
				job.OutputDir = outputDir
			}
			opts, err := a.loadOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				job.Format = opts.Format
			}
			if a.tolerant {
				job.Mode = opts.Mode
			}
			return a.runJob(job)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "YAML job profile")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Write charts to this directory")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func (a *app) runJob(job pipeline.Job) error {
	res, err := pipeline.Run(a.fs, job)
	if res != nil {
		a.printOutputs(res.Outputs)
	}
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		fmt.Fprintf(a.stderr, "%s %d malformed line(s) skipped in %s\n", a.color.Yellow("warning:"), res.Skipped, job.Input)
	}
	if a.preview {
		var names []string
		for _, c := range job.Charts {
			names = append(names, c.Series...)
		}
		if len(names) == 0 {
			names = res.Series.Names()
		}
		fmt.Fprint(a.stderr, render.Preview(res.Series, names, render.PreviewWidth))
	}
	return nil
}

// printOutputs writes one output path per line to stdout; sizes go to the log.
func (a *app) printOutputs(paths []string) {
	for _, p := range paths {
		fmt.Fprintln(a.stdout, a.color.Green(p))
		if fi, err := a.fs.Stat(p); err == nil {
			logging.Infof("[cli] %s %s", p, humanize.Bytes(uint64(fi.Size())))
		}
	}
}
