package escore

import (
	"strings"
)

func (r *Runtime) builtin_newArray(args []Value) *Object {
	if len(args) == 1 {
		switch l := args[0].(type) {
		case valueInt, valueFloat:
			a := r.newArrayObject(r.global.ArrayPrototype)
			a.defineOwnPropertyStr(stringLength, PropertyDescriptor{Value: l}, true)
			return a.val
		}
	}
	values := make([]Value, len(args))
	copy(values, args)
	return r.newArrayValues(values)
}

func (r *Runtime) array_isArray(call FunctionCall) Value {
	return valueBool(isArray(call.Argument(0)))
}

func (r *Runtime) arrayproto_push(call FunctionCall) Value {
	o := r.toObject(call.This)
	l := int64(toUint32(nilSafe(o.getStr(stringLength, nil))))
	for _, item := range call.Arguments {
		o.setStr(intToValue(l).String(), item, true)
		l++
	}
	n := intToValue(l)
	o.setStr(stringLength, n, true)
	return n
}

// maxStringLength bounds strings built by join.
const maxStringLength = 1 << 28

func (r *Runtime) arrayproto_join(call FunctionCall) Value {
	o := r.toObject(call.This)
	l := toUint32(nilSafe(o.getStr(stringLength, nil)))
	sep := ","
	if s := call.Argument(0); s != _undefined {
		sep = r.toPrimitive(s, hintString).String()
	}
	if l == 0 {
		return stringEmpty
	}
	if uint64(l-1)*uint64(len(sep)) > maxStringLength {
		panic(r.rangeError("Invalid string length"))
	}
	var buf strings.Builder
	write := func(i uint32) {
		if item := o.getStr(idxToStr(i), nil); !isNullish(item) {
			buf.WriteString(r.toPrimitive(item, hintString).String())
		}
		if buf.Len() > maxStringLength {
			panic(r.rangeError("Invalid string length"))
		}
	}
	if indices, ok := sparseIndices(o, l); ok && l > maxDenseLength {
		// holes only contribute their separators
		var pos uint32
		for _, idx := range indices {
			buf.WriteString(strings.Repeat(sep, int(idx-pos)))
			pos = idx
			write(idx)
		}
		buf.WriteString(strings.Repeat(sep, int(l-1-pos)))
		return newStringValue(buf.String())
	}
	for i := uint32(0); i < l; i++ {
		if i > 0 {
			buf.WriteString(sep)
		}
		write(i)
	}
	return newStringValue(buf.String())
}

func (r *Runtime) arrayproto_toString(call FunctionCall) Value {
	o := r.toObject(call.This)
	if join, ok := o.getStr("join", nil).(*Object); ok {
		if f, ok := join.self.assertCallable(); ok {
			return f(FunctionCall{This: o})
		}
	}
	return r.objectproto_toString(FunctionCall{This: o})
}

func (r *Runtime) initArray() {
	proto := r.newArrayObject(r.global.ObjectPrototype)
	r.global.ArrayPrototype = proto.val
	o := proto.val.self
	o._putProp("push", r.newNativeFunc("push", 1, r.arrayproto_push), true, false, true)
	o._putProp("join", r.newNativeFunc("join", 1, r.arrayproto_join), true, false, true)
	o._putProp("toString", r.newNativeFunc("toString", 0, r.arrayproto_toString), true, false, true)

	r.global.Array = r.newNativeFuncObj("Array", 1, func(call FunctionCall) Value {
		return r.builtin_newArray(call.Arguments)
	}, r.builtin_newArray, r.global.ArrayPrototype).val
	r.global.Array.self._putProp("isArray", r.newNativeFunc("isArray", 1, r.array_isArray), true, false, true)
	r.addToGlobal("Array", r.global.Array)
}
