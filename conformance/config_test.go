package conformance

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsconform/escore"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "escore.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
root: /suites/escargot
suites: [SpiderMonkey/ecma_5, test262/test/suite]
parallel: 3
parser_command: node esparse.js
parser_timeout: 5s
skip:
  - SpiderMonkey/ecma_5/Object/
`), 0o644))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "/suites/escargot", cfg.Root)
	assert.Equal(t, []string{"SpiderMonkey/ecma_5", "test262/test/suite"}, cfg.Suites)
	assert.Equal(t, 3, cfg.Parallel)
	assert.Equal(t, "node esparse.js", cfg.ParserCommand)
	assert.Equal(t, 5*time.Second, cfg.ParserTimeout)
	assert.Equal(t, []string{"SpiderMonkey/ecma_5/Object/"}, cfg.Skip)

	// unset fields come from the defaults
	assert.Equal(t, "5.1", cfg.Edition)
	assert.Equal(t, escore.DefaultMaxCallStackSize, cfg.MaxCallStackSize)
	assert.Equal(t, "escore-baseline.db", cfg.Baseline)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")

	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("parallel: [\n"), 0o644))
	_, err = LoadConfig(p)
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = filepath.Join(t.TempDir(), "nope")
	assert.ErrorContains(t, cfg.Validate(), "suite root")

	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	cfg.Root = f
	assert.EqualError(t, cfg.Validate(), "suite root "+f+" is not a directory")

	cfg.Root = t.TempDir()
	cfg.Parallel = -1
	assert.EqualError(t, cfg.Validate(), "parallel must be positive, got -1")
}

func TestOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = "/a"
	require.NoError(t, cfg.Override(&Config{Root: "/b", Parallel: 2}))
	assert.Equal(t, "/b", cfg.Root)
	assert.Equal(t, 2, cfg.Parallel)
	assert.Equal(t, "5.1", cfg.Edition)
}
