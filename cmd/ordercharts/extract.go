package main

import (
	"bytes"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/iafilius/OrderLogCharts/src/fixlog"
	"github.com/iafilius/OrderLogCharts/src/logging"
)

func (a *app) extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract latency tables and order events from FIX gateway logs",
	}
	latency := &cobra.Command{
		Use:   "latency <log> <out.csv>",
		Short: "Confirmed-order round trip times (ClientOrderID,CostMillisecond)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.writeOutput(args[1], func(w io.Writer) error {
				_, err := fixlog.ExtractLatency(a.fs, args[0], w)
				return err
			})
		},
	}
	var filter fixlog.Filter
	orders := &cobra.Command{
		Use:   "orders <log> <out.jsonl>",
		Short: "Received New/Cancel orders as JSON lines sorted by log time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.writeOutput(args[1], func(w io.Writer) error {
				_, err := fixlog.ExtractOrders(a.fs, args[0], w, filter)
				return err
			})
		},
	}
	orders.Flags().StringVar(&filter.Sender, "sender", fixlog.DefaultSender, "SenderCompID (tag 49) to keep")
	orders.Flags().StringVar(&filter.Symbol, "symbol", "", "Symbol (tag 55) to keep; all when empty")
	cmd.AddCommand(latency, orders)
	return cmd
}

func (a *app) cutCmd() *cobra.Command {
	var start, end, output string
	cmd := &cobra.Command{
		Use:   "cut --start <text> --end <text> <log>",
		Short: "Copy the log lines between the first line containing start and the first containing end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" || output == "-" {
				_, err := fixlog.Cut(a.fs, args[0], a.stdout, start, end)
				return err
			}
			return a.writeOutput(output, func(w io.Writer) error {
				n, err := fixlog.Cut(a.fs, args[0], w, start, end)
				logging.Infof("[cli] cut %d line(s) from %s", n, args[0])
				return err
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Text of the first line to copy, e.g. a timestamp")
	cmd.Flags().StringVar(&end, "end", "", "Text of the last line to copy")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// writeOutput runs produce into memory and writes path only when it succeeds, via a
// temp file renamed into place.
func (a *app) writeOutput(path string, produce func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := produce(&buf); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := afero.TempFile(a.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	name := tmp.Name()
	_, werr := tmp.Write(buf.Bytes())
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = a.fs.Rename(name, path)
	}
	if werr != nil {
		_ = a.fs.Remove(name)
		return errors.Wrapf(werr, "write %s", path)
	}
	a.printOutputs([]string{path})
	return nil
}
