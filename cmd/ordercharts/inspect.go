package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/iafilius/OrderLogCharts/src/records"
)

func (a *app) inspectCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Print record count, fields and value counts of one field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.loadOptions()
			if err != nil {
				return err
			}
			ds, err := records.Load(a.fs, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "File: %s (%s)\n", ds.Path, ds.Format)
			fmt.Fprintf(a.stdout, "Records: %d\n", ds.Len())
			if ds.Skipped > 0 {
				fmt.Fprintf(a.stdout, "Skipped: %d\n", ds.Skipped)
			}
			fmt.Fprintf(a.stdout, "Fields: %v\n", ds.Fields)
			if field == "" {
				return nil
			}
			counts := map[string]int{}
			for _, rec := range ds.Records {
				k := "(none)"
				if v, ok := rec.Get(field); ok {
					k = v.Text()
				}
				counts[k]++
			}
			keys := make([]string, 0, len(counts))
			for k := range counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(a.stdout, "%s: %d\n", a.color.Bold(k), counts[k])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "Count records per value of this field")
	return cmd
}
