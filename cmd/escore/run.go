package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/timshannon/bolthold"

	"github.com/jsconform/escore/conformance"
)

func newRunCommand(ctx context.Context, input *Input) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [test paths relative to the suite root...]",
		Short: "Run conformance tests and compare them with the last stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(ctx, cmd, input, args)
		},
	}
	cmd.Flags().BoolVar(&input.noBaseline, "no-baseline", false, "neither compare with nor store a baseline")
	return cmd
}

func runTests(ctx context.Context, cmd *cobra.Command, input *Input, tests []string) error {
	cfg, err := input.config()
	if err != nil {
		return err
	}
	report, err := input.report(cmd)
	if err != nil {
		return err
	}
	runner, err := conformance.NewRunner(cfg, input.logger)
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		if tests, err = runner.Discover(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	results, err := runner.Run(ctx, tests)
	report.Results(results)
	summary := conformance.Summarize(results)
	report.Summary(summary)
	if err != nil {
		// an interrupted run is never stored
		return err
	}

	if input.noBaseline {
		if summary.Failed > 0 {
			return errFailures
		}
		return nil
	}
	regressions, compared, err := saveRun(cfg, input, start, results)
	if err != nil {
		return err
	}
	if compared {
		report.Regressions(regressions)
		if len(regressions) > 0 {
			return errFailures
		}
	}
	return nil
}

// saveRun compares results with the latest stored run, if any, and stores them
// as a new run.
func saveRun(cfg *conformance.Config, input *Input, start time.Time, results []conformance.Result) (regressions []conformance.Regression, compared bool, err error) {
	b, err := conformance.OpenBaseline(cfg.Baseline)
	if err != nil {
		return nil, false, err
	}
	defer b.Close()

	latest, err := b.Latest()
	switch {
	case errors.Is(err, bolthold.ErrNotFound):
		input.logger.Info("no stored run to compare with")
	case err != nil:
		return nil, false, err
	default:
		if regressions, err = b.Compare(latest.ID, results); err != nil {
			return nil, false, err
		}
		compared = true
	}

	run, err := b.Save(start, results)
	if err != nil {
		return nil, false, err
	}
	input.logger.WithField("run", run.ID).Info("stored run")
	return regressions, compared, nil
}
