package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// exitFailures is returned when tests fail or regress.
const exitFailures = 64

var errFailures = errors.New("tests failed")

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, version string, args []string) int {
	input := &Input{}
	rootCmd := createRootCommand(ctx, input, version)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	input.stopProfile()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFailures):
		return exitFailures
	}
	rootCmd.PrintErrln("Error:", err)
	return 1
}

func createRootCommand(ctx context.Context, input *Input, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "escore",
		Short:             "Run ECMAScript conformance suites against the escore execution core",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: input.setup,
	}
	addFlags(rootCmd.PersistentFlags(), input)
	rootCmd.AddCommand(
		newRunCommand(ctx, input),
		newListCommand(ctx, input),
		newBaselineCommand(input),
		newExecCommand(input),
		newProfileCommand(),
	)
	return rootCmd
}
