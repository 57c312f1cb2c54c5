package escore

import (
	"fmt"
	"io"
	"math"

	"github.com/jsconform/escore/ast"
	"github.com/sirupsen/logrus"
)

type global struct {
	Object   *Object
	Function *Object
	Array    *Object
	String   *Object
	Number   *Object
	Boolean  *Object
	Eval     *Object

	ObjectPrototype   *Object
	FunctionPrototype *Object
	ArrayPrototype    *Object
	StringPrototype   *Object
	NumberPrototype   *Object
	BooleanPrototype  *Object

	Error          *Object
	TypeError      *Object
	RangeError     *Object
	ReferenceError *Object
	SyntaxError    *Object

	ErrorPrototype          *Object
	TypeErrorPrototype      *Object
	RangeErrorPrototype     *Object
	ReferenceErrorPrototype *Object
	SyntaxErrorPrototype    *Object

	thrower *Object
}

// Runtime is one execution context: a global object, its built-ins and a call
// stack. A Runtime is not safe for concurrent use.
type Runtime struct {
	global       global
	globalObject *Object
	globalEnv    *Environment
	stack        callStack

	hoisted map[*ast.FunctionLiteral]*ast.Declarations

	opts   options
	logger logrus.FieldLogger
}

// New creates a Runtime with a fresh global environment.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		opts: defaultOptions,
	}
	for _, opt := range opts {
		opt.apply(&r.opts)
	}
	r.logger = r.opts.logger
	if r.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.logger = l
	}
	r.stack.maxDepth = r.opts.maxCallStackSize
	r.init()
	return r
}

func (r *Runtime) init() {
	r.global.ObjectPrototype = r.newBaseObject(nil, classObject).val

	fp := r.newNativeFuncObj("", 0, func(FunctionCall) Value {
		return _undefined
	}, nil, nil)
	fp.prototype = r.global.ObjectPrototype
	r.global.FunctionPrototype = fp.val

	r.global.thrower = r.newThrower()

	r.globalObject = r.newBaseObject(r.global.ObjectPrototype, classGlobal).val
	r.globalEnv = newGlobalEnvironment(r.globalObject)

	r.initObject()
	r.initFunction()
	r.initArray()
	r.initErrors()
	r.initPrimitives()
	r.initGlobalObject()
}

func (r *Runtime) newBaseObject(proto *Object, class string) *baseObject {
	v := &Object{runtime: r}
	o := &baseObject{
		class:      class,
		val:        v,
		prototype:  proto,
		extensible: true,
	}
	v.self = o
	o.init()
	return o
}

// NewObject creates an ordinary object inheriting from Object.prototype.
func (r *Runtime) NewObject() *Object {
	return r.newBaseObject(r.global.ObjectPrototype, classObject).val
}

// NewArray creates an array of the given values.
func (r *Runtime) NewArray(items ...interface{}) *Object {
	values := make([]Value, len(items))
	for i, item := range items {
		values[i] = r.ToValue(item)
	}
	return r.newArrayValues(values)
}

func (r *Runtime) newPrimitiveObject(value Value, proto *Object, class string) *Object {
	v := &Object{runtime: r}
	o := &primitiveValueObject{
		pValue: value,
	}
	o.class = class
	o.val = v
	o.extensible = true
	o.prototype = proto
	v.self = o
	o.init()
	if s, ok := value.(valueString); ok {
		units := s.utf16()
		for i := range units {
			o._putProp(idxToStr(uint32(i)), newStringValue(string(rune(units[i]))), false, true, false)
		}
		o._putProp(stringLength, intToValue(int64(len(units))), false, false, false)
	}
	return v
}

// NewFunction wraps a Go function as a native function object.
func (r *Runtime) NewFunction(name string, length int, f func(FunctionCall) Value) *Object {
	return r.newNativeFunc(name, length, f)
}

func (r *Runtime) newError(typ *Object, format string, args ...interface{}) *Object {
	proto, _ := typ.getStr(stringPrototype, nil).(*Object)
	o := r.newBaseObject(proto, classError)
	o._putProp("message", newStringValue(fmt.Sprintf(format, args...)), true, false, true)
	return o.val
}

// NewTypeError creates a TypeError instance. The first argument is a format string when more follow.
func (r *Runtime) NewTypeError(args ...interface{}) *Object {
	msg := ""
	if len(args) > 0 {
		f, _ := args[0].(string)
		msg = fmt.Sprintf(f, args[1:]...)
	}
	return r.newError(r.global.TypeError, "%s", msg)
}

// NewError creates an instance of the given error constructor, e.g. r.GlobalObject().Get("RangeError").
func (r *Runtime) NewError(typ *Object, format string, args ...interface{}) *Object {
	return r.newError(typ, format, args...)
}

// GlobalObject returns the global object.
func (r *Runtime) GlobalObject() *Object {
	return r.globalObject
}

// Set the specified variable in the global context.
// Equivalent to running "name = value" in non-strict mode.
func (r *Runtime) Set(name string, value interface{}) error {
	return r.try(func() {
		r.globalObject.setStr(name, r.ToValue(value), false)
	})
}

// Get the specified variable in the global context. Returns nil if the variable does not exist.
func (r *Runtime) Get(name string) Value {
	return r.globalObject.getStr(name, nil)
}

// Logger returns the logger runtime diagnostics go to.
func (r *Runtime) Logger() logrus.FieldLogger {
	return r.logger
}

// ToValue converts a Go value into a JavaScript value. Values, primitive Go types, native function
// signatures, slices and string maps are supported; anything else becomes its fmt.Sprint form.
func (r *Runtime) ToValue(i interface{}) Value {
	switch i := i.(type) {
	case nil:
		return _null
	case Value:
		return i
	case string:
		return newStringValue(i)
	case bool:
		return valueBool(i)
	case int:
		return intToValue(int64(i))
	case int32:
		return intToValue(int64(i))
	case int64:
		return intToValue(i)
	case uint32:
		return intToValue(int64(i))
	case float32:
		return floatToValue(float64(i))
	case float64:
		return floatToValue(i)
	case func(FunctionCall) Value:
		return r.newNativeFunc("", 0, i)
	case []Value:
		return r.newArrayValues(i)
	case []interface{}:
		return r.NewArray(i...)
	case map[string]interface{}:
		o := r.NewObject()
		for k, v := range i {
			o.self._putProp(k, r.ToValue(v), true, true, true)
		}
		return o
	}
	return newStringValue(fmt.Sprint(i))
}

func (r *Runtime) toObject(v Value) *Object {
	if o, ok := v.(*Object); ok {
		return o
	}
	return v.ToObject(r)
}

type primitiveHint int

const (
	hintNone primitiveHint = iota
	hintNumber
	hintString
)

func (r *Runtime) tryPrimitive(o *Object, methodName string) Value {
	if method, ok := o.getStr(methodName, nil).(*Object); ok {
		if call, ok := method.self.assertCallable(); ok {
			v := call(FunctionCall{
				This: o,
			})
			if _, fail := v.(*Object); !fail {
				return v
			}
		}
	}
	return nil
}

// toPrimitive implements ToPrimitive (ES5 9.1).
func (r *Runtime) toPrimitive(v Value, hint primitiveHint) Value {
	o, ok := v.(*Object)
	if !ok {
		return v
	}
	first, second := "valueOf", "toString"
	if hint == hintString {
		first, second = second, first
	}
	if v := r.tryPrimitive(o, first); v != nil {
		return v
	}
	if v := r.tryPrimitive(o, second); v != nil {
		return v
	}
	panic(r.typeError("Cannot convert object to primitive value"))
}

func (r *Runtime) toPropertyKey(v Value) string {
	switch v := v.(type) {
	case valueString:
		return string(v)
	case valueInt:
		return v.String()
	}
	return r.toPrimitive(v, hintString).String()
}

func (r *Runtime) toNumber(v Value) float64 {
	return r.toPrimitive(v, hintNumber).ToFloat()
}

// try runs f, turning uncaught script errors and harness assertion failures
// into returned errors. Any other panic propagates.
func (r *Runtime) try(f func()) (err error) {
	defer func() {
		if x := recover(); x != nil {
			switch x := x.(type) {
			case *Exception:
				err = x
			case *AssertionError:
				err = x
			default:
				panic(x)
			}
		}
	}()

	f()
	return nil
}

// RunProgram evaluates a script in the global environment and returns its
// completion value. An uncaught script error is returned as *Exception, a
// harness assertion failure as *AssertionError.
func (r *Runtime) RunProgram(p *ast.Program) (result Value, err error) {
	err = r.try(func() {
		result = r.runScript(p)
	})
	if err != nil {
		r.logger.WithField("program", p.Name).WithError(err).Debug("program terminated")
	}
	return
}

// Callable represents a JavaScript function that can be called from Go.
type Callable func(this Value, args ...Value) (Value, error)

// AssertFunction checks if the Value is a function and returns a Callable.
func AssertFunction(v Value) (Callable, bool) {
	if obj, ok := v.(*Object); ok {
		if f, ok := obj.self.assertCallable(); ok {
			return func(this Value, args ...Value) (ret Value, err error) {
				err = obj.runtime.try(func() {
					ret = f(FunctionCall{
						This:      this,
						Arguments: args,
					})
				})
				return
			}, true
		}
	}
	return nil, false
}

// Freeze is the Go equivalent of Object.freeze(o).
func (r *Runtime) Freeze(o *Object) error {
	return r.try(func() {
		o.freeze()
	})
}

// IsFrozen is the Go equivalent of Object.isFrozen(o).
func (r *Runtime) IsFrozen(o *Object) bool {
	return o.isFrozen()
}

// DefineProperties is the Go equivalent of Object.defineProperties(o, props).
// Properties defined before a failing one stay defined.
func (r *Runtime) DefineProperties(o, props *Object) error {
	return r.try(func() {
		r.defineProperties(o, props)
	})
}

func isNegativeZero(f float64) bool {
	return f == 0 && math.Signbit(f)
}
