package main

import (
	"github.com/spf13/cobra"

	"github.com/jsconform/escore/conformance"
)

func newBaselineCommand(input *Input) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Inspect stored runs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBaseline(cmd, input, func(b *conformance.Baseline, report *conformance.Report) error {
				runs, err := b.Runs()
				if err != nil {
					return err
				}
				report.Runs(runs)
				return nil
			})
		},
	}, &cobra.Command{
		Use:   "show [run id]",
		Short: "Print the results of a stored run, the latest by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaseline(cmd, input, func(b *conformance.Baseline, report *conformance.Report) error {
				var id string
				if len(args) > 0 {
					id = args[0]
				} else {
					latest, err := b.Latest()
					if err != nil {
						return err
					}
					id = latest.ID
				}
				results, err := b.Results(id)
				if err != nil {
					return err
				}
				report.Results(results)
				report.Summary(conformance.Summarize(results))
				return nil
			})
		},
	})
	return cmd
}

func withBaseline(cmd *cobra.Command, input *Input, f func(*conformance.Baseline, *conformance.Report) error) error {
	cfg, err := input.config()
	if err != nil {
		return err
	}
	report, err := input.report(cmd)
	if err != nil {
		return err
	}
	b, err := conformance.OpenBaseline(cfg.Baseline)
	if err != nil {
		return err
	}
	defer b.Close()
	return f(b, report)
}
