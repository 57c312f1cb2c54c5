package escore

func (r *Runtime) createErrorPrototype(name string, proto *Object) *Object {
	o := r.newBaseObject(proto, classObject)
	o._putProp("message", stringEmpty, true, false, true)
	o._putProp("name", newStringValue(name), true, false, true)
	return o.val
}

func (r *Runtime) newErrorConstructor(name string, proto *Object) *Object {
	construct := func(args []Value) *Object {
		o := r.newBaseObject(proto, classError)
		if len(args) > 0 && args[0] != _undefined {
			o._putProp("message", newStringValue(r.toPrimitive(args[0], hintString).String()), true, false, true)
		}
		return o.val
	}
	return r.newNativeFuncObj(name, 1, func(call FunctionCall) Value {
		return construct(call.Arguments)
	}, construct, proto).val
}

// error_toString implements Error.prototype.toString (ES5 15.11.4.4).
func (r *Runtime) error_toString(call FunctionCall) Value {
	obj, ok := call.This.(*Object)
	if !ok {
		panic(r.typeError("Error.prototype.toString called on non-object"))
	}
	name := "Error"
	if v := obj.getStr("name", nil); v != nil && v != _undefined {
		name = r.toPrimitive(v, hintString).String()
	}
	msg := ""
	if v := obj.getStr("message", nil); v != nil && v != _undefined {
		msg = r.toPrimitive(v, hintString).String()
	}
	switch {
	case name == "":
		return newStringValue(msg)
	case msg == "":
		return newStringValue(name)
	}
	return newStringValue(name + ": " + msg)
}

func (r *Runtime) initErrors() {
	r.global.ErrorPrototype = r.createErrorPrototype("Error", r.global.ObjectPrototype)
	r.global.ErrorPrototype.self._putProp("toString", r.newNativeFunc("toString", 0, r.error_toString), true, false, true)
	r.global.Error = r.newErrorConstructor("Error", r.global.ErrorPrototype)
	r.addToGlobal("Error", r.global.Error)

	r.global.TypeErrorPrototype = r.createErrorPrototype("TypeError", r.global.ErrorPrototype)
	r.global.TypeError = r.newErrorConstructor("TypeError", r.global.TypeErrorPrototype)
	r.addToGlobal("TypeError", r.global.TypeError)

	r.global.RangeErrorPrototype = r.createErrorPrototype("RangeError", r.global.ErrorPrototype)
	r.global.RangeError = r.newErrorConstructor("RangeError", r.global.RangeErrorPrototype)
	r.addToGlobal("RangeError", r.global.RangeError)

	r.global.ReferenceErrorPrototype = r.createErrorPrototype("ReferenceError", r.global.ErrorPrototype)
	r.global.ReferenceError = r.newErrorConstructor("ReferenceError", r.global.ReferenceErrorPrototype)
	r.addToGlobal("ReferenceError", r.global.ReferenceError)

	r.global.SyntaxErrorPrototype = r.createErrorPrototype("SyntaxError", r.global.ErrorPrototype)
	r.global.SyntaxError = r.newErrorConstructor("SyntaxError", r.global.SyntaxErrorPrototype)
	r.addToGlobal("SyntaxError", r.global.SyntaxError)
}
