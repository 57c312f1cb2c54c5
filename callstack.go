package escore

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	errStackOverflow  = errors.New("Maximum call stack size exceeded.")
	errCallerPoisoned = errors.New("access to strict function caller is poisoned")
)

// CallFrame is one activation: script code, eval code or a function call.
type CallFrame struct {
	caller   *CallFrame
	isStrict bool
	depth    int

	// fn is nil for script and eval code.
	fn     *Object
	native bool
	name   string
	this   Value

	// lexEnv changes while the frame runs (catch blocks); varEnv does not.
	lexEnv *Environment
	varEnv *Environment
}

// StackFrame is an entry of an exception's stack trace.
type StackFrame struct {
	FuncName string
	Strict   bool
}

func (f *StackFrame) String() string {
	if f.FuncName == "" {
		return "<anonymous>"
	}
	return f.FuncName
}

type callStack struct {
	top      *CallFrame
	maxDepth int
}

func (s *callStack) depth() int {
	if s.top == nil {
		return 0
	}
	return s.top.depth
}

// push links frame on top of the stack. It fails without changing the stack
// when the depth limit would be exceeded.
func (s *callStack) push(frame *CallFrame) error {
	depth := s.depth() + 1
	if depth > s.maxDepth {
		return errStackOverflow
	}
	frame.caller = s.top
	frame.depth = depth
	s.top = frame
	return nil
}

func (s *callStack) pop() {
	if s.top == nil {
		panic("call stack underflow")
	}
	s.top = s.top.caller
}

// frameOf returns the most recent activation of fn.
func (s *callStack) frameOf(fn *Object) *CallFrame {
	for f := s.top; f != nil; f = f.caller {
		if f.fn == fn {
			return f
		}
	}
	return nil
}

// currentCaller returns the frame that invoked frame. A strict caller is
// never revealed.
func (s *callStack) currentCaller(frame *CallFrame) (*CallFrame, error) {
	caller := frame.caller
	if caller == nil {
		return nil, nil
	}
	if caller.isStrict && !caller.native {
		return nil, errCallerPoisoned
	}
	return caller, nil
}

func (s *callStack) stackTrace() []StackFrame {
	var trace []StackFrame
	for f := s.top; f != nil; f = f.caller {
		trace = append(trace, StackFrame{
			FuncName: f.name,
			Strict:   f.isStrict,
		})
	}
	return trace
}

// enter pushes frame or throws the stack overflow RangeError. Every successful
// enter is paired with a deferred r.stack.pop().
func (r *Runtime) enter(frame *CallFrame) {
	if err := r.stack.push(frame); err != nil {
		r.logger.WithFields(logrus.Fields{
			"depth":    r.stack.depth(),
			"function": frame.name,
		}).Debug("call stack limit reached")
		panic(r.rangeError("%s", err))
	}
}
