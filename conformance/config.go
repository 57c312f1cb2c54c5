package conformance

import (
	"os"
	"runtime"
	"time"

	"dario.cat/mergo"
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jsconform/escore"
	"github.com/jsconform/escore/estree"
)

// Config describes a conformance run. Zero fields take their value from
// DefaultConfig.
type Config struct {
	// Root is the suite checkout; test paths are relative to it.
	Root string `yaml:"root"`
	// Suites lists the directories under Root to walk.
	Suites []string `yaml:"suites"`
	// Prelude files are run before every test, e.g. a suite's shell.js.
	Prelude []string `yaml:"prelude"`
	// Skip lists extra paths to exclude. Entries ending in "/" are prefixes.
	Skip []string `yaml:"skip"`

	Parallel         int    `yaml:"parallel"`
	Edition          string `yaml:"edition"`
	MaxCallStackSize int    `yaml:"max_call_stack_size"`

	// ParserCommand turns source text into ESTree JSON on stdout. Without it
	// only tests with a <name>.js.json sidecar can run, and eval is a SyntaxError.
	ParserCommand string        `yaml:"parser_command"`
	ParserTimeout time.Duration `yaml:"parser_timeout"`

	// Baseline is the bolt database holding previous runs.
	Baseline string `yaml:"baseline"`
}

func DefaultConfig() *Config {
	return &Config{
		Suites:           []string{"."},
		Parallel:         runtime.NumCPU(),
		Edition:          "5.1",
		MaxCallStackSize: escore.DefaultMaxCallStackSize,
		ParserTimeout:    estree.DefaultCommandTimeout,
		Baseline:         "escore-baseline.db",
	}
}

// LoadConfig reads a YAML config file and fills the fields it leaves unset
// from DefaultConfig. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", path)
		}
	}
	if err := cfg.Merge(DefaultConfig()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge fills the zero fields of c from other.
func (c *Config) Merge(other *Config) error {
	return errors.Wrap(mergo.Merge(c, other), "merging config")
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("no suite root configured")
	}
	if st, err := os.Stat(c.Root); err != nil {
		return errors.Wrap(err, "suite root")
	} else if !st.IsDir() {
		return errors.Errorf("suite root %s is not a directory", c.Root)
	}
	if c.Parallel < 1 {
		return errors.Errorf("parallel must be positive, got %d", c.Parallel)
	}
	_, err := c.editionConstraint()
	return err
}

// editionConstraint accepts tests written for the configured edition or an
// earlier one.
func (c *Config) editionConstraint() (*semver.Constraints, error) {
	constraint, err := semver.NewConstraint("<= " + c.Edition)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid edition %q", c.Edition)
	}
	return constraint, nil
}

// Override replaces the fields of c that are set in other, as command line
// flags do.
func (c *Config) Override(other *Config) error {
	return errors.Wrap(mergo.Merge(c, other, mergo.WithOverride), "overriding config")
}
