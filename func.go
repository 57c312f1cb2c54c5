package escore

import (
	"github.com/jsconform/escore/ast"
)

const restrictedPropertyMessage = "'caller' and 'arguments' are restricted function properties and cannot be accessed in this context."

type baseFuncObject struct {
	baseObject

	name string
}

// funcObject is a function created from a function literal.
type funcObject struct {
	baseFuncObject

	lit    *ast.FunctionLiteral
	scope  *Environment
	strict bool
}

type nativeFuncObject struct {
	baseFuncObject

	f         func(FunctionCall) Value
	construct func(args []Value) *Object
}

func (f *baseFuncObject) funcName() string {
	return f.name
}

func (f *baseFuncObject) hasInstance(v Value) bool {
	if v, ok := v.(*Object); ok {
		o := f.val.getStr(stringPrototype, nil)
		if o1, ok := o.(*Object); ok {
			for {
				v = v.self.proto()
				if v == nil {
					return false
				}
				if o1 == v {
					return true
				}
			}
		} else {
			f.val.runtime.typeErrorResult(true, "prototype is not an object")
		}
	}

	return false
}

func (f *nativeFuncObject) assertCallable() (func(FunctionCall) Value, bool) {
	if f.f != nil {
		return f.Call, true
	}
	return nil, false
}

func (f *nativeFuncObject) Call(call FunctionCall) Value {
	r := f.val.runtime
	frame := &CallFrame{
		fn:       f.val,
		native:   true,
		isStrict: true,
		this:     call.This,
		name:     f.name,
	}
	r.enter(frame)
	defer r.stack.pop()
	return f.f(call)
}

func (f *nativeFuncObject) assertConstructor() func(args []Value) *Object {
	return f.construct
}

func (f *nativeFuncObject) export() interface{} {
	return f.f
}

func (f *funcObject) addPrototype() *valueProperty {
	r := f.val.runtime
	proto := r.NewObject()
	proto.self._putProp("constructor", f.val, true, false, true)
	return f._putProp(stringPrototype, proto, true, false, false)
}

func (f *funcObject) _addProto(n string) *valueProperty {
	if n == stringPrototype {
		if _, exists := f.values[stringPrototype]; !exists {
			return f.addPrototype()
		}
	}
	return nil
}

// callerProp reports whether name is the caller property a non-strict
// function reports from the call stack instead of storing it.
func (f *funcObject) callerProp(name string) bool {
	return name == "caller" && !f.strict && !f.baseObject.hasOwnPropertyStr(name)
}

func (f *funcObject) getOwnPropStr(name string) *valueProperty {
	if v := f._addProto(name); v != nil {
		return v
	}
	if f.callerProp(name) {
		return &valueProperty{
			value: f.val.runtime.functionCaller(f.val),
		}
	}

	return f.baseObject.getOwnPropStr(name)
}

func (f *funcObject) hasOwnPropertyStr(name string) bool {
	if name == stringPrototype || f.callerProp(name) {
		return true
	}
	return f.baseObject.hasOwnPropertyStr(name)
}

func (f *funcObject) defineOwnPropertyStr(name string, descr PropertyDescriptor, throw bool) bool {
	if f.callerProp(name) {
		// caller is read-only and non-configurable: only no-op redefinitions pass.
		if descr.Configurable == FLAG_TRUE || descr.Enumerable == FLAG_TRUE || descr.Writable == FLAG_TRUE || descr.IsAccessor() ||
			descr.Value != nil && !descr.Value.SameAs(f.getOwnPropStr(name).value) {
			f.val.runtime.typeErrorResult(throw, "%s", errRedefine)
			return false
		}
		return true
	}
	f._addProto(name)
	return f.baseObject.defineOwnPropertyStr(name, descr, throw)
}

func (f *funcObject) deleteStr(name string, throw bool) bool {
	if f.callerProp(name) {
		f.val.runtime.typeErrorResult(throw, "Cannot delete property '%s' of %s", name, f.val.objectString())
		return false
	}
	f._addProto(name)
	return f.baseObject.deleteStr(name, throw)
}

func (f *funcObject) ownKeys(all bool, accum []string) []string {
	f._addProto(stringPrototype)
	accum = f.baseObject.ownKeys(all, accum)
	if all && f.callerProp("caller") {
		accum = append(accum, "caller")
	}
	return accum
}

func (f *funcObject) assertCallable() (func(FunctionCall) Value, bool) {
	return f.Call, true
}

func (f *funcObject) assertConstructor() func(args []Value) *Object {
	return f.construct
}

func (f *funcObject) Call(call FunctionCall) Value {
	return f.val.runtime.callFunction(f, call.This, call.Arguments)
}

func (f *funcObject) construct(args []Value) *Object {
	r := f.val.runtime
	proto, ok := f.val.getStr(stringPrototype, nil).(*Object)
	if !ok {
		proto = r.global.ObjectPrototype
	}
	obj := r.newBaseObject(proto, classObject).val
	if ret, ok := r.callFunction(f, obj, args).(*Object); ok {
		return ret
	}
	return obj
}

func (f *funcObject) export() interface{} {
	return func(call FunctionCall) Value {
		return f.Call(call)
	}
}

func (r *Runtime) initBaseFunc(f *baseFuncObject, name string, length int) {
	f.class = classFunction
	f.prototype = r.global.FunctionPrototype
	f.extensible = true
	f.name = name
	f.init()
	f._putProp(stringLength, intToValue(int64(length)), false, false, false)
	f._putProp("name", newStringValue(name), false, false, false)
}

// newFunction creates the function object for lit, closing over scope.
func (r *Runtime) newFunction(lit *ast.FunctionLiteral, scope *Environment, strict bool) *Object {
	v := &Object{runtime: r}
	f := &funcObject{
		lit:    lit,
		scope:  scope,
		strict: strict || lit.Strict,
	}
	f.val = v
	v.self = f
	r.initBaseFunc(&f.baseFuncObject, lit.Name, len(lit.ParameterList))
	if f.strict {
		f._putAccessor("caller", r.global.thrower, r.global.thrower, false, false)
		f._putAccessor("arguments", r.global.thrower, r.global.thrower, false, false)
	}
	return v
}

func (r *Runtime) newNativeFuncObj(name string, length int, call func(FunctionCall) Value, construct func(args []Value) *Object, proto *Object) *nativeFuncObject {
	v := &Object{runtime: r}
	f := &nativeFuncObject{
		f:         call,
		construct: construct,
	}
	f.val = v
	v.self = f
	r.initBaseFunc(&f.baseFuncObject, name, length)
	if proto != nil {
		f._putProp(stringPrototype, proto, false, false, false)
		proto.self._putProp("constructor", v, true, false, true)
	}
	return f
}

func (r *Runtime) newNativeFunc(name string, length int, call func(FunctionCall) Value) *Object {
	return r.newNativeFuncObj(name, length, call, nil, nil).val
}

// newThrower creates the %ThrowTypeError% function of ES5 13.2.3.
func (r *Runtime) newThrower() *Object {
	f := r.newNativeFuncObj("", 0, func(FunctionCall) Value {
		panic(r.typeError(restrictedPropertyMessage))
	}, nil, nil)
	f.preventExtensions(true)
	return f.val
}

// functionCaller resolves the caller property of a non-strict function from
// the live call stack.
func (r *Runtime) functionCaller(fn *Object) Value {
	frame := r.stack.frameOf(fn)
	if frame == nil {
		return _null
	}
	caller, err := r.stack.currentCaller(frame)
	if err != nil {
		panic(r.typeError("%s", err))
	}
	if caller == nil || caller.fn == nil || caller.native {
		return _null
	}
	return caller.fn
}
