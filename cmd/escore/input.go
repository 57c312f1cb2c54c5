package main

import (
	"os"
	"runtime/pprof"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/jsconform/escore/conformance"
)

// Input holds the command line flags shared by all commands.
type Input struct {
	configPath string
	logLevel   string
	cpuProfile string
	lang       string
	color      string

	root     string
	parser   string
	parallel int
	baseline string
	verbose  bool

	noBaseline bool

	logger  *logrus.Logger
	profile *os.File
}

func addFlags(flags *pflag.FlagSet, input *Input) {
	flags.StringVarP(&input.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&input.logLevel, "log-level", "warning", "log level (trace, debug, info, warning, error)")
	flags.StringVar(&input.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	flags.StringVar(&input.lang, "lang", "en", "language used to format numbers in reports")
	flags.StringVar(&input.color, "color", "auto", "color output (auto, always, never)")
	flags.StringVarP(&input.root, "root", "r", "", "suite root, overrides the config file")
	flags.StringVarP(&input.parser, "parser", "p", "", "command printing ESTree JSON for source on stdin")
	flags.IntVarP(&input.parallel, "parallel", "j", 0, "number of test files run at once")
	flags.StringVar(&input.baseline, "baseline", "", "baseline database")
	flags.BoolVarP(&input.verbose, "verbose", "v", false, "list passing and skipped tests too")
}

// config loads the config file and applies the flags given on top of it.
func (i *Input) config() (*conformance.Config, error) {
	cfg, err := conformance.LoadConfig(i.configPath)
	if err != nil {
		return nil, err
	}
	err = cfg.Override(&conformance.Config{
		Root:          i.root,
		ParserCommand: i.parser,
		Parallel:      i.parallel,
		Baseline:      i.baseline,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (i *Input) report(cmd *cobra.Command) (*conformance.Report, error) {
	tag, err := language.Parse(i.lang)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid language %q", i.lang)
	}
	opts := []conformance.ReportOption{conformance.WithVerbose(i.verbose)}
	switch i.color {
	case "auto":
	case "always":
		opts = append(opts, conformance.WithColor(true))
	case "never":
		opts = append(opts, conformance.WithColor(false))
	default:
		return nil, errors.Errorf("invalid color mode %q", i.color)
	}
	return conformance.NewReport(cmd.OutOrStdout(), tag, opts...), nil
}

func (i *Input) setup(cmd *cobra.Command, _ []string) error {
	level, err := logrus.ParseLevel(i.logLevel)
	if err != nil {
		return err
	}
	i.logger = logrus.New()
	i.logger.SetOutput(cmd.ErrOrStderr())
	i.logger.SetLevel(level)

	if i.cpuProfile != "" {
		f, err := os.Create(i.cpuProfile)
		if err != nil {
			return errors.Wrap(err, "creating cpu profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return errors.Wrap(err, "starting cpu profile")
		}
		i.profile = f
	}
	return nil
}

func (i *Input) stopProfile() {
	if i.profile == nil {
		return
	}
	pprof.StopCPUProfile()
	if err := i.profile.Close(); err != nil && i.logger != nil {
		i.logger.WithError(err).Error("closing cpu profile")
	}
	i.profile = nil
}
