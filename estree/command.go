package estree

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jsconform/escore/ast"
)

// DefaultCommandTimeout bounds a single external parser invocation.
const DefaultCommandTimeout = 30 * time.Second

// Command runs an external program that reads JavaScript on stdin and prints
// an ESTree Program as JSON, for example
//
//	node -e "process.stdout.write(JSON.stringify(require('acorn').parse(require('fs').readFileSync(0,'utf8'),{ecmaVersion:5})))"
//
// Its Parse method satisfies escore.ParseFunc, which makes eval and the
// Function constructor available to the runtime.
type Command struct {
	Path    string
	Args    []string
	Timeout time.Duration
}

// NewCommand splits a command line on spaces. Quoted arguments are not supported;
// build a Command directly when they are needed.
func NewCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty parser command")
	}
	return &Command{Path: fields[0], Args: fields[1:]}, nil
}

func (c *Command) Parse(name, src string) (*ast.Program, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = strings.NewReader(src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			// A parser that rejects the input reports the syntax error on stderr.
			return nil, &SyntaxError{Name: name, Message: firstLine(msg)}
		}
		return nil, errors.Wrapf(err, "running parser %s", c.Path)
	}
	return Parse(name, stdout.Bytes(), src)
}

// SyntaxError is an early error reported by the external parser.
type SyntaxError struct {
	Name    string
	Message string
}

func (e *SyntaxError) Error() string {
	return e.Name + ": " + e.Message
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
