package conformance

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/jsconform/escore"
	"github.com/jsconform/escore/ast"
	"github.com/jsconform/escore/estree"
)

// SidecarSuffix is appended to a test's file name to find its pre-parsed AST.
const SidecarSuffix = ".json"

var errNoFrontend = errors.New("no AST sidecar and no parser command")

// Frontend produces program trees for test files: from an ESTree sidecar
// next to the file when there is one, otherwise from the parser command.
type Frontend struct {
	root string
	cmd  *estree.Command

	mu    sync.Mutex
	cache map[string]*ast.Program
}

func NewFrontend(cfg *Config) (*Frontend, error) {
	f := &Frontend{
		root:  cfg.Root,
		cache: make(map[string]*ast.Program),
	}
	if cfg.ParserCommand != "" {
		cmd, err := estree.NewCommand(cfg.ParserCommand)
		if err != nil {
			return nil, err
		}
		cmd.Timeout = cfg.ParserTimeout
		f.cmd = cmd
	}
	return f, nil
}

// ParseFile parses the test at rel, a slash-separated path under the suite root.
func (f *Frontend) ParseFile(rel, src string) (*ast.Program, error) {
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)) + SidecarSuffix)
	switch {
	case err == nil:
		return estree.Parse(rel, data, src)
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "reading AST of %s", rel)
	case f.cmd == nil:
		return nil, errNoFrontend
	}
	return f.cmd.Parse(rel, src)
}

// Load reads and parses a support file such as a harness include. Results are
// cached; the trees are never modified and are shared between runtimes.
func (f *Frontend) Load(rel string) (*ast.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prg := f.cache[rel]
	if prg == nil {
		src, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", rel)
		}
		prg, err = f.ParseFile(rel, string(src))
		if err != nil {
			return nil, err
		}
		f.cache[rel] = prg
	}
	return prg, nil
}

// ParseFunc returns the parser used for eval and the Function constructor, or
// nil when no parser command is configured.
func (f *Frontend) ParseFunc() escore.ParseFunc {
	if f.cmd == nil {
		return nil
	}
	return f.cmd.Parse
}
