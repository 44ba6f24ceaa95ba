package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iafilius/OrderLogCharts/src/logging"
	"github.com/iafilius/OrderLogCharts/src/records"
)

// app carries the filesystem, output streams and global flags shared by all commands.
type app struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	color  aurora.Aurora

	tolerant bool
	format   string
	logLevel string
	noColor  bool
	preview  bool
}

func main() {
	os.Exit(execute(os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, fs afero.Fs, stdout, stderr io.Writer) int {
	a := &app{fs: fs, stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if a.color == nil {
			a.color = aurora.NewAurora(false)
		}
		fmt.Fprintf(stderr, "%s %s\n", a.color.Red("error:"), oneLine(err))
		return 1
	}
	return 0
}

// oneLine flattens err to a single line.
func oneLine(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ordercharts <input>",
		Short: "Chart order latency and order book activity from trading logs",
		Long: `ordercharts loads CSV, JSON lines or XLSX record files (optionally gzip, bzip2,
xz or snappy compressed), derives numeric series and writes JPEG charts next to
the input. Latency tables get a histogram, order event logs a depth line and a
per-second rate bar chart.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// arguments are valid by now; runtime errors should not print usage
			cmd.SilenceUsage = true
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAuto(args[0])
		},
	}
	pf := root.PersistentFlags()
	pf.BoolVar(&a.tolerant, "tolerant", false, "Skip malformed lines and incomplete records instead of failing")
	pf.StringVar(&a.format, "format", "auto", "Input format: auto, csv, jsonl or xlsx")
	pf.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable coloured output")
	pf.BoolVar(&a.preview, "preview", false, "Also plot the derived series in the terminal")

	root.AddCommand(a.chartCmds()...)
	root.AddCommand(a.runCmd(), a.extractCmd(), a.cutCmd(), a.inspectCmd())
	return root
}

func (a *app) setup() error {
	if !logging.ValidLevel(a.logLevel) {
		return errors.Newf("unknown log level %q (want debug, info, warn or error)", a.logLevel)
	}
	logging.SetLogLevel(a.logLevel)
	logging.SetOutput(a.stderr)
	a.color = aurora.NewAurora(!a.noColor && isTerminal(a.stdout))
	return nil
}

func (a *app) loadOptions() (records.Options, error) {
	f, err := records.ParseFormat(a.format)
	if err != nil {
		return records.Options{}, err
	}
	mode := records.Strict
	if a.tolerant {
		mode = records.Tolerant
	}
	return records.Options{Format: f, Mode: mode}, nil
}
