package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsconform/escore/conformance"
)

func newListCommand(ctx context.Context, input *Input) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the test files of the configured suites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := input.config()
			if err != nil {
				return err
			}
			runner, err := conformance.NewRunner(cfg, input.logger)
			if err != nil {
				return err
			}
			tests, err := runner.Discover(ctx)
			if err != nil {
				return err
			}
			for _, t := range tests {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}
