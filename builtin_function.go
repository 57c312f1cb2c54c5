package escore

import (
	"strings"

	"github.com/jsconform/escore/ast"
)

func (r *Runtime) builtin_Function(args []Value) *Object {
	var params, body string
	if len(args) > 0 {
		names := make([]string, len(args)-1)
		for i, a := range args[:len(args)-1] {
			names[i] = a.String()
		}
		params = strings.Join(names, ",")
		body = args[len(args)-1].String()
	}
	if r.opts.parser == nil {
		panic(r.syntaxError("Function constructor requires a front-end parser"))
	}
	src := "(function anonymous(" + params + "\n) {\n" + body + "\n})"
	prg, err := r.opts.parser("anonymous", src)
	if err != nil {
		panic(r.syntaxError("%s", err))
	}
	if len(prg.Body) == 1 {
		if st, ok := prg.Body[0].(*ast.ExpressionStatement); ok {
			if lit, ok := st.Expression.(*ast.FunctionLiteral); ok {
				return r.newFunction(lit, r.globalEnv, false)
			}
		}
	}
	panic(r.syntaxError("Invalid function body"))
}

func (r *Runtime) functionproto_toString(call FunctionCall) Value {
	if obj, ok := call.This.(*Object); ok {
		switch f := obj.self.(type) {
		case *funcObject:
			if f.lit.Source != "" {
				return newStringValue(f.lit.Source)
			}
			return newStringValue("function " + f.name + "() { [code] }")
		case *nativeFuncObject:
			return newStringValue("function " + f.name + "() { [native code] }")
		}
	}

	panic(r.typeError("Function.prototype.toString requires that 'this' be a Function"))
}

func (r *Runtime) toCallable(v Value) func(FunctionCall) Value {
	if obj, ok := v.(*Object); ok {
		if call, ok := obj.self.assertCallable(); ok {
			return call
		}
	}
	panic(r.typeError("%s is not a function", v.String()))
}

func (r *Runtime) functionproto_call(call FunctionCall) Value {
	var args []Value
	if len(call.Arguments) > 0 {
		args = call.Arguments[1:]
	}

	f := r.toCallable(call.This)
	return f(FunctionCall{
		This:      call.Argument(0),
		Arguments: args,
	})
}

// maxApplyArguments bounds the argument list built by apply.
const maxApplyArguments = 65535

// createListFromArrayLike implements the argument list conversion of
// Function.prototype.apply (ES5 15.3.4.3).
func (r *Runtime) createListFromArrayLike(a Value) []Value {
	o, ok := a.(*Object)
	if !ok {
		panic(r.typeError("CreateListFromArrayLike called on non-object"))
	}
	l := toUint32(nilSafe(o.getStr(stringLength, nil)))
	if l > maxApplyArguments {
		panic(r.rangeError("Too many arguments in function call (only %d allowed)", maxApplyArguments))
	}
	res := make([]Value, 0, l)
	for k := uint32(0); k < l; k++ {
		res = append(res, nilSafe(o.getStr(idxToStr(k), nil)))
	}
	return res
}

func (r *Runtime) functionproto_apply(call FunctionCall) Value {
	var args []Value
	if len(call.Arguments) >= 2 && !isNullish(call.Arguments[1]) {
		args = r.createListFromArrayLike(call.Arguments[1])
	}

	f := r.toCallable(call.This)
	return f(FunctionCall{
		This:      call.Argument(0),
		Arguments: args,
	})
}

func (r *Runtime) initFunction() {
	o := r.global.FunctionPrototype.self
	o._putProp("apply", r.newNativeFunc("apply", 2, r.functionproto_apply), true, false, true)
	o._putProp("call", r.newNativeFunc("call", 1, r.functionproto_call), true, false, true)
	o._putProp("toString", r.newNativeFunc("toString", 0, r.functionproto_toString), true, false, true)

	r.global.Function = r.newNativeFuncObj("Function", 1, func(call FunctionCall) Value {
		return r.builtin_Function(call.Arguments)
	}, r.builtin_Function, r.global.FunctionPrototype).val
	r.addToGlobal("Function", r.global.Function)
}
