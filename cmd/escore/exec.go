package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jsconform/escore"
	"github.com/jsconform/escore/conformance"
	"github.com/jsconform/escore/harness"
)

func newExecCommand(input *Input) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <file>",
		Short: "Run a single script with the test harness installed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execFile(cmd, input, args[0])
		},
	}
}

// execFile runs name in a fresh runtime. The tree comes from a sidecar next to
// the file or from the parser command.
func execFile(cmd *cobra.Command, input *Input, name string) error {
	cfg, err := input.config()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return errors.Wrapf(err, "could not read %s", name)
	}
	cfg.Root = filepath.Dir(abs)
	frontend, err := conformance.NewFrontend(cfg)
	if err != nil {
		return err
	}
	prg, err := frontend.ParseFile(filepath.Base(abs), string(src))
	if err != nil {
		return err
	}

	rt := escore.New(
		escore.WithMaxCallStackSize(cfg.MaxCallStackSize),
		escore.WithParser(frontend.ParseFunc()),
		escore.WithLogger(input.logger),
	)
	h := harness.Install(rt, harness.WithOutput(cmd.OutOrStdout()), harness.WithLogger(input.logger))
	if _, err := rt.RunProgram(prg); err != nil {
		var ex *escore.Exception
		if errors.As(err, &ex) {
			cmd.PrintErr(ex.String())
		} else {
			cmd.PrintErrln(err)
		}
		return errFailures
	}
	if err := h.Err(); err != nil {
		cmd.PrintErrln(err)
		return errFailures
	}
	return nil
}
