package escore

import (
	"fmt"
	"strings"
)

// ErrorKind classifies an uncaught error.
type ErrorKind int

const (
	ErrorKindError ErrorKind = iota
	ErrorKindTypeError
	ErrorKindRangeError
	ErrorKindReferenceError
	ErrorKindSyntaxError
	ErrorKindAssertion
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTypeError:
		return "TypeError"
	case ErrorKindRangeError:
		return "RangeError"
	case ErrorKindReferenceError:
		return "ReferenceError"
	case ErrorKindSyntaxError:
		return "SyntaxError"
	case ErrorKindAssertion:
		return "AssertionError"
	}
	return "Error"
}

// ParseErrorKind maps an error constructor name to its kind. Unknown names map
// to ErrorKindError.
func ParseErrorKind(name string) ErrorKind {
	switch name {
	case "TypeError":
		return ErrorKindTypeError
	case "RangeError":
		return ErrorKindRangeError
	case "ReferenceError":
		return ErrorKindReferenceError
	case "SyntaxError":
		return ErrorKindSyntaxError
	case "AssertionError":
		return ErrorKindAssertion
	}
	return ErrorKindError
}

// Exception is a value thrown by script code and not caught.
type Exception struct {
	val   Value
	kind  ErrorKind
	stack []StackFrame
}

func (e *Exception) writeFullStack(b *strings.Builder) {
	for _, frame := range e.stack {
		b.WriteString("\tat ")
		b.WriteString(frame.String())
		b.WriteByte('\n')
	}
}

func (e *Exception) writeShortStack(b *strings.Builder) {
	if len(e.stack) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.stack[0].String())
	}
}

// String renders the thrown value the way Error.prototype.toString would,
// followed by the stack trace.
func (e *Exception) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.Message())
	b.WriteByte('\n')
	e.writeFullStack(&b)
	return b.String()
}

// Error renders the value and the innermost frame.
func (e *Exception) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.Message())
	e.writeShortStack(&b)
	return b.String()
}

// Message renders the thrown value without its stack trace, e.g.
// "RangeError: Maximum call stack size exceeded.".
func (e *Exception) Message() string {
	switch v := e.val.(type) {
	case nil:
		return "undefined"
	case *Object:
		if s, ok := errorString(v); ok {
			return s
		}
		return v.objectString()
	}
	return e.val.String()
}

func (e *Exception) Value() Value {
	return e.val
}

func (e *Exception) Kind() ErrorKind {
	return e.kind
}

func (e *Exception) Stack() []StackFrame {
	return e.stack
}

// errorString renders an error object from its own or inherited name and
// message data properties. Accessors are not run.
func errorString(o *Object) (string, bool) {
	name, ok1 := dataPropertyString(o, "name")
	msg, ok2 := dataPropertyString(o, "message")
	if !ok1 && !ok2 {
		return "", false
	}
	if !ok1 {
		name = "Error"
	}
	switch {
	case name == "":
		return msg, true
	case msg == "":
		return name, true
	}
	return name + ": " + msg, true
}

func dataPropertyString(o *Object, name string) (string, bool) {
	prop := o.lookup(name)
	if prop == nil || prop.accessor {
		return "", false
	}
	switch v := prop.value.(type) {
	case valueString:
		return string(v), true
	case valueInt, valueFloat, valueBool:
		return v.String(), true
	}
	return "", false
}

// AssertionError is raised by the conformance harness. It is not a script
// value: catch clauses and finally blocks do not see it, and it always ends the
// program.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return "assertion failure: " + e.Message
}

func (e *AssertionError) Kind() ErrorKind {
	return ErrorKindAssertion
}

// NewAssertionError formats an AssertionError. Raise it with panic from a
// native function.
func NewAssertionError(format string, args ...interface{}) *AssertionError {
	return &AssertionError{
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf reports the kind of an error returned by RunProgram. ok is false for
// errors that did not come from the runtime.
func KindOf(err error) (kind ErrorKind, ok bool) {
	switch err := err.(type) {
	case *Exception:
		return err.Kind(), true
	case *AssertionError:
		return ErrorKindAssertion, true
	}
	return ErrorKindError, false
}

func (r *Runtime) classify(v Value) ErrorKind {
	o, ok := v.(*Object)
	if !ok {
		return ErrorKindError
	}
	for p := o.self.proto(); p != nil; p = p.self.proto() {
		switch p {
		case r.global.TypeErrorPrototype:
			return ErrorKindTypeError
		case r.global.RangeErrorPrototype:
			return ErrorKindRangeError
		case r.global.ReferenceErrorPrototype:
			return ErrorKindReferenceError
		case r.global.SyntaxErrorPrototype:
			return ErrorKindSyntaxError
		case r.global.ErrorPrototype:
			return ErrorKindError
		}
	}
	return ErrorKindError
}

func (r *Runtime) newException(v Value) *Exception {
	return &Exception{
		val:   v,
		kind:  r.classify(v),
		stack: r.stack.stackTrace(),
	}
}

func (r *Runtime) typeErrorResult(throw bool, args ...interface{}) {
	if throw {
		panic(r.newException(r.NewTypeError(args...)))
	}
}

func (r *Runtime) typeError(format string, args ...interface{}) *Exception {
	return r.newException(r.newError(r.global.TypeError, format, args...))
}

func (r *Runtime) rangeError(format string, args ...interface{}) *Exception {
	return r.newException(r.newError(r.global.RangeError, format, args...))
}

func (r *Runtime) referenceError(format string, args ...interface{}) *Exception {
	return r.newException(r.newError(r.global.ReferenceError, format, args...))
}

func (r *Runtime) syntaxError(format string, args ...interface{}) *Exception {
	return r.newException(r.newError(r.global.SyntaxError, format, args...))
}
