package escore

import (
	"github.com/jsconform/escore/ast"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxCallStackSize  = 4096
	DefaultMaxPrototypeChain = 4096
)

var defaultOptions = options{
	maxCallStackSize:  DefaultMaxCallStackSize,
	maxPrototypeChain: DefaultMaxPrototypeChain,
}

// ParseFunc turns source text handed to eval or the Function constructor into
// a program tree. name identifies the code in stack traces.
type ParseFunc func(name, src string) (*ast.Program, error)

type Option interface {
	apply(*options)
}

type options struct {
	maxCallStackSize  int
	maxPrototypeChain int
	logger            logrus.FieldLogger
	parser            ParseFunc
}

type funcOption struct {
	f func(*options)
}

func (fdo *funcOption) apply(do *options) {
	fdo.f(do)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithMaxCallStackSize limits the number of nested activations. Exceeding it
// throws a RangeError. Values below 1 are ignored.
func WithMaxCallStackSize(n int) Option {
	return newFuncOption(func(o *options) {
		if n > 0 {
			o.maxCallStackSize = n
		}
	})
}

// WithMaxPrototypeChain limits how many prototype links a property lookup
// follows before giving up. Values below 1 are ignored.
func WithMaxPrototypeChain(n int) Option {
	return newFuncOption(func(o *options) {
		if n > 0 {
			o.maxPrototypeChain = n
		}
	})
}

// WithLogger sets the logger for runtime diagnostics. By default they are discarded.
func WithLogger(logger logrus.FieldLogger) Option {
	return newFuncOption(func(o *options) {
		o.logger = logger
	})
}

// WithParser installs the front-end used by eval and the Function constructor.
func WithParser(parse ParseFunc) Option {
	return newFuncOption(func(o *options) {
		o.parser = parse
	})
}
