package conformance

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	varThenAssign = `{"type":"Program","body":[
		{"type":"VariableDeclaration","kind":"var","declarations":[
			{"type":"VariableDeclarator","id":{"type":"Identifier","name":"x"},"init":null}]},
		{"type":"ExpressionStatement","expression":{"type":"AssignmentExpression","operator":"=",
			"left":{"type":"Identifier","name":"x"},"right":{"type":"Literal","value":1,"raw":"1"}}}]}`

	assignUndeclared = `{"type":"Program","body":[
		{"type":"ExpressionStatement","expression":{"type":"AssignmentExpression","operator":"=",
			"left":{"type":"Identifier","name":"y"},"right":{"type":"Literal","value":1,"raw":"1"}}}]}`

	callError = `{"type":"Program","body":[
		{"type":"ExpressionStatement","expression":{"type":"CallExpression",
			"callee":{"type":"Identifier","name":"$ERROR"},
			"arguments":[{"type":"Literal","value":"#1: boom","raw":"'#1: boom'"}]}}]}`

	throwTypeError = `{"type":"Program","body":[
		{"type":"ThrowStatement","argument":{"type":"NewExpression",
			"callee":{"type":"Identifier","name":"TypeError"},
			"arguments":[{"type":"Literal","value":"x","raw":"'x'"}]}}]}`

	reportMismatch = `{"type":"Program","body":[
		{"type":"ExpressionStatement","expression":{"type":"CallExpression",
			"callee":{"type":"Identifier","name":"reportCompare"},
			"arguments":[
				{"type":"Literal","value":1,"raw":"1"},
				{"type":"Literal","value":2,"raw":"2"},
				{"type":"Literal","value":"summary","raw":"'summary'"}]}}]}`

	letDeclaration = `{"type":"Program","body":[
		{"type":"VariableDeclaration","kind":"let","declarations":[
			{"type":"VariableDeclarator","id":{"type":"Identifier","name":"x"},"init":null}]}]}`
)

func writeTest(t *testing.T, root, name, src, tree string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	if tree != "" {
		require.NoError(t, os.WriteFile(p+SidecarSuffix, []byte(tree), 0o644))
	}
}

func newTestRunner(t *testing.T, root string, mod func(*Config)) *Runner {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Root = root
	cfg.Parallel = 2
	if mod != nil {
		mod(cfg)
	}
	logger, _ := logtest.NewNullLogger()
	r, err := NewRunner(cfg, logger)
	require.NoError(t, err)
	return r
}

func TestRunFile(t *testing.T) {
	root := t.TempDir()
	writeTest(t, root, "sputnik/S7.9_A7_T3.js", "/**\n * @name: S7.9_A7_T3;\n */\nvar x\nx = 1\n", varThenAssign)
	writeTest(t, root, "sputnik/error.js", "$ERROR('#1: boom');\n", callError)
	writeTest(t, root, "ietc/negative.js", "/**\n * @negative TypeError\n */\nthrow new TypeError('x');\n", throwTypeError)
	writeTest(t, root, "ietc/wrong-negative.js", "/**\n * @negative RangeError\n */\nthrow new TypeError('x');\n", throwTypeError)
	writeTest(t, root, "ietc/missing-throw.js", "/**\n * @negative\n */\nvar x\nx = 1\n", varThenAssign)
	writeTest(t, root, "SpiderMonkey/skipped.js", "// escargot-skip: let keyword not supported\nlet x;\n", "")
	writeTest(t, root, "SpiderMonkey/let.js", "let x;\n", letDeclaration)
	writeTest(t, root, "SpiderMonkey/compare.js", "reportCompare(1, 2, 'summary');\n", reportMismatch)
	writeTest(t, root, "SpiderMonkey/no-ast.js", "var a;\n", "")
	writeTest(t, root, "test/both-modes.js", "/*---\nes5id: 8.7.2-1\n---*/\ny = 1;\n", assignUndeclared)
	writeTest(t, root, "test/sloppy-only.js", "/*---\nes5id: 8.7.2-1\nflags: [noStrict]\n---*/\ny = 1;\n", assignUndeclared)
	writeTest(t, root, "test/es6.js", "/*---\nesid: sec-let\n---*/\ny = 1;\n", assignUndeclared)
	writeTest(t, root, "test/excluded.js", "y = 1;\n", assignUndeclared)

	r := newTestRunner(t, root, func(cfg *Config) {
		cfg.Skip = []string{"test/excluded.js"}
	})

	for _, tc := range []struct {
		name    string
		status  Status
		message string
	}{
		{"sputnik/S7.9_A7_T3.js", StatusPass, ""},
		{"sputnik/error.js", StatusFail, "#1: boom"},
		{"ietc/negative.js", StatusPass, ""},
		{"ietc/wrong-negative.js", StatusFail, "unexpected error type (TypeError), expected (RangeError)"},
		{"ietc/missing-throw.js", StatusFail, "expected an error to be thrown"},
		{"SpiderMonkey/skipped.js", StatusSkip, "let keyword not supported"},
		{"SpiderMonkey/let.js", StatusSkip, "unsupported construct: let"},
		{"SpiderMonkey/compare.js", StatusFail, "summary: expected 1, got 2"},
		{"SpiderMonkey/no-ast.js", StatusFail, errNoFrontend.Error()},
		{"test/both-modes.js", StatusFail, "strict mode: ReferenceError: y is not defined"},
		{"test/sloppy-only.js", StatusPass, ""},
		{"test/es6.js", StatusSkip, "edition 6.0.0"},
		{"test/excluded.js", StatusSkip, "excluded"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := r.RunFile(tc.name)
			assert.Equal(t, tc.name, res.Path)
			assert.Equal(t, tc.status, res.Status, res.Message)
			assert.True(t, strings.HasPrefix(res.Message, tc.message), "message %q", res.Message)
		})
	}
}

func TestRunFileLogs(t *testing.T) {
	root := t.TempDir()
	writeTest(t, root, "error.js", "$ERROR('#1: boom');\n", callError)

	logger, hook := logtest.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Root = root
	r, err := NewRunner(cfg, logger)
	require.NoError(t, err)

	r.RunFile("error.js")
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "#1: boom", entry.Message)
	assert.Equal(t, "error.js", entry.Data["test"])
	assert.Equal(t, StatusFail, entry.Data["status"])
	assert.Contains(t, entry.Data, "duration")
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTest(t, root, "SpiderMonkey/shell.js", "", "")
	writeTest(t, root, "SpiderMonkey/ecma_5/shell.js", "", "")
	writeTest(t, root, "SpiderMonkey/ecma_5/Object/freeze-global-eval-const.js", "", "{}")
	writeTest(t, root, "SpiderMonkey/js1_5/regress-424683-01.js", "", "")
	writeTest(t, root, "SpiderMonkey/.hidden/a.js", "", "")
	writeTest(t, root, "test262/b_FIXTURE.js", "", "")
	writeTest(t, root, "test262/README.md", "", "")

	r := newTestRunner(t, root, nil)
	tests, err := r.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"SpiderMonkey/ecma_5/Object/freeze-global-eval-const.js",
		"SpiderMonkey/js1_5/regress-424683-01.js",
	}, tests)

	r = newTestRunner(t, root, func(cfg *Config) {
		cfg.Suites = []string{"SpiderMonkey/js1_5"}
	})
	tests, err = r.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SpiderMonkey/js1_5/regress-424683-01.js"}, tests)
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	writeTest(t, root, "a.js", "var x\nx = 1\n", varThenAssign)
	writeTest(t, root, "b.js", "$ERROR('#1: boom');\n", callError)
	writeTest(t, root, "c.js", "var x\nx = 1\n", varThenAssign)

	r := newTestRunner(t, root, nil)
	results, err := r.Run(context.Background(), []string{"a.js", "b.js", "c.js"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a.js", results[0].Path)
	assert.Equal(t, StatusFail, results[1].Status)
	assert.Equal(t, StatusPass, results[2].Status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err = r.Run(ctx, []string{"a.js", "b.js"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestIncludesAndPrelude(t *testing.T) {
	root := t.TempDir()
	writeTest(t, root, "shell.js", "var x\nx = 1\n", varThenAssign)
	writeTest(t, root, "harness/throws.js", "$ERROR('#1: boom');\n", callError)
	writeTest(t, root, "test/a.js", "/*---\nes5id: 15.1-a\nincludes: [throws.js]\n---*/\nvar x\nx = 1\n", varThenAssign)
	writeTest(t, root, "test/b.js", "/*---\nes5id: 15.1-a\nincludes: [missing.js]\n---*/\nvar x\nx = 1\n", varThenAssign)

	r := newTestRunner(t, root, func(cfg *Config) {
		cfg.Prelude = []string{"shell.js"}
	})
	res := r.RunFile("test/a.js")
	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, "harness/throws.js: assertion failure: #1: boom", res.Message)

	res = r.RunFile("test/b.js")
	assert.Equal(t, StatusFail, res.Status)
	assert.Contains(t, res.Message, "reading harness/missing.js")
}

func TestNewRunnerValidates(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg := DefaultConfig()
	_, err := NewRunner(cfg, logger)
	assert.EqualError(t, err, "no suite root configured")

	cfg.Root = t.TempDir()
	cfg.Edition = "five"
	_, err = NewRunner(cfg, logger)
	assert.ErrorContains(t, err, `invalid edition "five"`)

	cfg.Edition = "5.1"
	cfg.ParserCommand = "   "
	_, err = NewRunner(cfg, logger)
	assert.EqualError(t, err, "empty parser command")
}
