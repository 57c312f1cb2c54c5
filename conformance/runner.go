package conformance

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jsconform/escore"
	"github.com/jsconform/escore/ast"
	"github.com/jsconform/escore/estree"
	"github.com/jsconform/escore/harness"
)

type Status int

const (
	StatusPass Status = iota
	StatusFail
	StatusSkip
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	}
	return "SKIP"
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case "PASS":
		return StatusPass, nil
	case "FAIL":
		return StatusFail, nil
	case "SKIP":
		return StatusSkip, nil
	}
	return StatusFail, errors.Errorf("unknown status %q", s)
}

// Result is the outcome of one test file.
type Result struct {
	Path     string
	Status   Status
	Message  string
	Duration time.Duration
}

func pass() Result {
	return Result{Status: StatusPass}
}

func fail(format string, args ...interface{}) Result {
	return Result{Status: StatusFail, Message: fmt.Sprintf(format, args...)}
}

func skip(reason string) Result {
	return Result{Status: StatusSkip, Message: reason}
}

// Runner executes test files, each in a fresh Runtime with the harness
// installed.
type Runner struct {
	cfg      *Config
	frontend *Frontend
	logger   logrus.FieldLogger
	edition  *semver.Constraints

	skipList     map[string]bool
	skipPrefixes prefixList
}

func NewRunner(cfg *Config, logger logrus.FieldLogger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	edition, err := cfg.editionConstraint()
	if err != nil {
		return nil, err
	}
	frontend, err := NewFrontend(cfg)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:      cfg,
		frontend: frontend,
		logger:   logger,
		edition:  edition,
		skipList: make(map[string]bool),
	}
	for _, s := range cfg.Skip {
		if strings.HasSuffix(s, "/") {
			r.skipPrefixes.Add(s)
		} else {
			r.skipList[s] = true
		}
	}
	return r, nil
}

// Discover lists the test files of the configured suites as slash-separated
// paths relative to the suite root. Shell and fixture files are left out.
func (r *Runner) Discover(ctx context.Context) ([]string, error) {
	var tests []string
	for _, suite := range r.cfg.Suites {
		dir := filepath.Join(r.cfg.Root, filepath.FromSlash(suite))
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if p != dir && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(name, ".js") || strings.Contains(name, "shell") || strings.HasSuffix(name, "_FIXTURE.js") {
				return nil
			}
			rel, err := filepath.Rel(r.cfg.Root, p)
			if err != nil {
				return err
			}
			tests = append(tests, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", dir)
		}
	}
	return tests, nil
}

// Run executes tests with up to Config.Parallel files at a time. A cancelled
// context stops the run between files; the results gathered so far are
// returned with the context's error.
func (r *Runner) Run(ctx context.Context, tests []string) ([]Result, error) {
	results := make([]Result, len(tests))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallel)
	for i, name := range tests {
		if ctx.Err() != nil {
			break
		}
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.RunFile(name)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		done := results[:0]
		for _, res := range results {
			if res.Path != "" {
				done = append(done, res)
			}
		}
		return done, err
	}
	return results, nil
}

// RunFile runs a single test.
func (r *Runner) RunFile(name string) Result {
	start := time.Now()
	res := r.runFile(name)
	res.Path = name
	res.Duration = time.Since(start)

	entry := r.logger.WithFields(logrus.Fields{
		"test":     name,
		"status":   res.Status,
		"duration": res.Duration,
	})
	if res.Status == StatusFail {
		entry.Info(res.Message)
	} else {
		entry.Debug(res.Message)
	}
	return res
}

func (r *Runner) excluded(name string) bool {
	return skipList[name] || skipPrefixes.Match(name) || r.skipList[name] || r.skipPrefixes.Match(name)
}

func (r *Runner) runFile(name string) Result {
	if r.excluded(name) {
		return skip("excluded")
	}
	b, err := os.ReadFile(filepath.Join(r.cfg.Root, filepath.FromSlash(name)))
	if err != nil {
		return fail("%v", err)
	}
	src := string(b)
	meta, err := ParseMeta(src)
	if err != nil {
		return fail("could not parse %s: %v", name, err)
	}

	switch {
	case meta.SkipReason != "":
		return skip(meta.SkipReason)
	case meta.HasFlag("module"):
		return skip("module")
	}
	if meta.Es5id == "" {
		if feature := blacklistedFeature(meta.Features); feature != "" {
			return skip("blacklisted feature " + feature)
		}
	}
	if v := meta.Edition(); v != nil && !r.edition.Check(v) {
		return skip("edition " + v.Original())
	}

	prg, err := r.frontend.ParseFile(name, src)
	if err != nil {
		var unsupported *estree.UnsupportedError
		if errors.As(err, &unsupported) {
			return skip(unsupported.Error())
		}
		if meta.IsNegative() && meta.Negative.Type == "SyntaxError" && meta.Negative.Phase != "runtime" {
			return pass()
		}
		return fail("%v", err)
	}
	if meta.IsNegative() && meta.Negative.Phase != "runtime" && meta.Negative.Phase != "resolution" {
		return fail("expected %s at the %s phase", meta.Negative.Type, meta.Negative.Phase)
	}

	includes, err := r.includes(meta)
	if err != nil {
		return fail("%v", err)
	}
	for _, strict := range meta.StrictModes() {
		if res := r.runProgram(prg, strict, includes, meta); res.Status != StatusPass {
			if strict {
				res.Message = "strict mode: " + res.Message
			}
			return res
		}
	}
	return pass()
}

func (r *Runner) includes(meta *Meta) ([]*ast.Program, error) {
	var list []*ast.Program
	names := append([]string{}, r.cfg.Prelude...)
	for _, inc := range meta.Includes {
		names = append(names, path.Join("harness", inc))
	}
	for _, name := range names {
		prg, err := r.frontend.Load(name)
		if err != nil {
			return nil, err
		}
		list = append(list, prg)
	}
	return list, nil
}

func (r *Runner) runProgram(prg *ast.Program, strict bool, includes []*ast.Program, meta *Meta) Result {
	logger := r.logger.WithField("test", prg.Name)
	rt := escore.New(
		escore.WithMaxCallStackSize(r.cfg.MaxCallStackSize),
		escore.WithParser(r.frontend.ParseFunc()),
		escore.WithLogger(logger),
	)
	var out bytes.Buffer
	h := harness.Install(rt, harness.WithOutput(&out), harness.WithLogger(logger))

	for _, inc := range includes {
		if _, err := rt.RunProgram(inc); err != nil {
			return fail("%s: %v", inc.Name, err)
		}
	}

	if strict && !prg.Strict {
		cp := *prg
		cp.Strict = true
		prg = &cp
	}
	_, err := rt.RunProgram(prg)

	var assertion *escore.AssertionError
	switch {
	case errors.As(err, &assertion):
		return fail("%s", assertion.Message)
	case meta.IsNegative():
		if err == nil {
			expected := meta.Negative.Type
			if expected == "" {
				expected = "an error"
			}
			return fail("expected %s to be thrown", expected)
		}
		if errType := errorType(err); meta.Negative.Type != "" && errType != meta.Negative.Type {
			return fail("unexpected error type (%s), expected (%s): %v", errType, meta.Negative.Type, err)
		}
		return pass()
	case err != nil:
		return fail("%v", err)
	}

	if err := h.Err(); errors.As(err, &assertion) {
		return fail("%s", assertion.Message)
	}
	if reason := h.Skipped(); reason != "" {
		return skip(reason)
	}
	return pass()
}

// errorType names the constructor of a thrown error, falling back to its kind.
func errorType(err error) string {
	if ex, ok := err.(*escore.Exception); ok {
		if o, ok := ex.Value().(*escore.Object); ok {
			if c, ok := o.Get("constructor").(*escore.Object); ok {
				if name := c.Get("name"); name != nil {
					return name.String()
				}
			}
		}
	}
	kind, _ := escore.KindOf(err)
	return kind.String()
}
