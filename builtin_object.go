package escore

func (r *Runtime) builtin_Object(args []Value) *Object {
	if len(args) > 0 {
		arg := args[0]
		if !isNullish(arg) {
			return r.toObject(arg)
		}
	}
	return r.NewObject()
}

func (r *Runtime) toObjectArg(v Value, fn string) *Object {
	if o, ok := v.(*Object); ok {
		return o
	}
	panic(r.typeError("Object.%s called on non-object", fn))
}

func (r *Runtime) object_getPrototypeOf(call FunctionCall) Value {
	o := r.toObjectArg(call.Argument(0), "getPrototypeOf")
	if p := o.self.proto(); p != nil {
		return p
	}
	return _null
}

func (r *Runtime) object_getOwnPropertyDescriptor(call FunctionCall) Value {
	o := r.toObjectArg(call.Argument(0), "getOwnPropertyDescriptor")
	descr, ok := o.getOwnPropertyDescriptor(r.toPropertyKey(call.Argument(1)))
	if !ok {
		return _undefined
	}
	return descr.toValue(r)
}

func (r *Runtime) object_getOwnPropertyNames(call FunctionCall) Value {
	o := r.toObjectArg(call.Argument(0), "getOwnPropertyNames")
	return r.newStringArray(o.self.ownKeys(true, nil))
}

func (r *Runtime) object_keys(call FunctionCall) Value {
	o := r.toObjectArg(call.Argument(0), "keys")
	return r.newStringArray(o.self.ownKeys(false, nil))
}

func (r *Runtime) newStringArray(names []string) *Object {
	values := make([]Value, len(names))
	for i, name := range names {
		values[i] = newStringValue(name)
	}
	return r.newArrayValues(values)
}

func (r *Runtime) object_create(call FunctionCall) Value {
	var proto *Object
	if arg := call.Argument(0); arg != _null {
		if o, ok := arg.(*Object); ok {
			proto = o
		} else {
			panic(r.typeError("Object prototype may only be an Object or null: %s", arg.String()))
		}
	}
	o := r.newBaseObject(proto, classObject).val

	if props := call.Argument(1); props != _undefined {
		r.defineProperties(o, r.toObject(props))
	}

	return o
}

func (r *Runtime) object_defineProperty(call FunctionCall) Value {
	retVal := call.Argument(0)
	o := r.toObjectArg(retVal, "defineProperty")
	descr := r.toPropertyDescriptor(call.Argument(2))
	o.self.defineOwnPropertyStr(r.toPropertyKey(call.Argument(1)), descr, true)
	return retVal
}

// defineProperties implements ES5 15.2.3.7. All descriptors are converted
// before the first one is applied; a failing define leaves the earlier ones
// in place.
func (r *Runtime) defineProperties(o *Object, props *Object) {
	type propItem struct {
		name string
		desc PropertyDescriptor
	}
	var list []propItem
	for _, name := range props.self.ownKeys(false, nil) {
		list = append(list, propItem{
			name: name,
			desc: r.toPropertyDescriptor(nilSafe(props.getStr(name, nil))),
		})
	}
	for _, prop := range list {
		o.self.defineOwnPropertyStr(prop.name, prop.desc, true)
	}
}

func (r *Runtime) object_defineProperties(call FunctionCall) Value {
	obj := r.toObjectArg(call.Argument(0), "defineProperties")
	r.defineProperties(obj, r.toObject(call.Argument(1)))
	return obj
}

func (r *Runtime) object_seal(call FunctionCall) Value {
	arg := call.Argument(0)
	if obj, ok := arg.(*Object); ok {
		obj.seal()
		return obj
	}
	panic(r.typeError("Object.seal called on non-object"))
}

func (r *Runtime) object_freeze(call FunctionCall) Value {
	arg := call.Argument(0)
	if obj, ok := arg.(*Object); ok {
		obj.freeze()
		return obj
	}
	panic(r.typeError("Object.freeze called on non-object"))
}

func (r *Runtime) object_preventExtensions(call FunctionCall) Value {
	arg := call.Argument(0)
	if obj, ok := arg.(*Object); ok {
		obj.self.preventExtensions(true)
		return obj
	}
	panic(r.typeError("Object.preventExtensions called on non-object"))
}

func (r *Runtime) object_isSealed(call FunctionCall) Value {
	return valueBool(r.toObjectArg(call.Argument(0), "isSealed").isSealed())
}

func (r *Runtime) object_isFrozen(call FunctionCall) Value {
	return valueBool(r.toObjectArg(call.Argument(0), "isFrozen").isFrozen())
}

func (r *Runtime) object_isExtensible(call FunctionCall) Value {
	return valueBool(r.toObjectArg(call.Argument(0), "isExtensible").self.isExtensible())
}

func (r *Runtime) objectproto_hasOwnProperty(call FunctionCall) Value {
	p := r.toPropertyKey(call.Argument(0))
	o := r.toObject(call.This)
	return valueBool(o.self.hasOwnPropertyStr(p))
}

func (r *Runtime) objectproto_isPrototypeOf(call FunctionCall) Value {
	if v, ok := call.Argument(0).(*Object); ok {
		o := r.toObject(call.This)
		for {
			v = v.self.proto()
			if v == nil {
				break
			}
			if v == o {
				return valueTrue
			}
		}
	}
	return valueFalse
}

func (r *Runtime) objectproto_propertyIsEnumerable(call FunctionCall) Value {
	p := r.toPropertyKey(call.Argument(0))
	o := r.toObject(call.This)
	if prop := o.self.getOwnPropStr(p); prop != nil {
		return valueBool(prop.enumerable)
	}
	return valueFalse
}

func (r *Runtime) objectproto_toString(call FunctionCall) Value {
	switch o := call.This.(type) {
	case valueNull:
		return newStringValue("[object Null]")
	case valueUndefined:
		return newStringValue("[object Undefined]")
	case nil:
		return newStringValue("[object Undefined]")
	default:
		return newStringValue("[object " + r.toObject(o).self.className() + "]")
	}
}

func (r *Runtime) objectproto_toLocaleString(call FunctionCall) Value {
	toString := r.getV(call.This, "toString")
	if f, ok := AssertFunction(toString); ok {
		v, err := f(call.This)
		if err != nil {
			panic(err)
		}
		return v
	}
	panic(r.typeError("toString is not a function"))
}

func (r *Runtime) objectproto_valueOf(call FunctionCall) Value {
	return r.toObject(call.This)
}

func (r *Runtime) initObject() {
	o := r.global.ObjectPrototype.self
	o._putProp("hasOwnProperty", r.newNativeFunc("hasOwnProperty", 1, r.objectproto_hasOwnProperty), true, false, true)
	o._putProp("isPrototypeOf", r.newNativeFunc("isPrototypeOf", 1, r.objectproto_isPrototypeOf), true, false, true)
	o._putProp("propertyIsEnumerable", r.newNativeFunc("propertyIsEnumerable", 1, r.objectproto_propertyIsEnumerable), true, false, true)
	o._putProp("toString", r.newNativeFunc("toString", 0, r.objectproto_toString), true, false, true)
	o._putProp("toLocaleString", r.newNativeFunc("toLocaleString", 0, r.objectproto_toLocaleString), true, false, true)
	o._putProp("valueOf", r.newNativeFunc("valueOf", 0, r.objectproto_valueOf), true, false, true)

	r.global.Object = r.newNativeFuncObj("Object", 1, func(call FunctionCall) Value {
		return r.builtin_Object(call.Arguments)
	}, r.builtin_Object, r.global.ObjectPrototype).val
	o = r.global.Object.self
	o._putProp("defineProperty", r.newNativeFunc("defineProperty", 3, r.object_defineProperty), true, false, true)
	o._putProp("defineProperties", r.newNativeFunc("defineProperties", 2, r.object_defineProperties), true, false, true)
	o._putProp("getOwnPropertyDescriptor", r.newNativeFunc("getOwnPropertyDescriptor", 2, r.object_getOwnPropertyDescriptor), true, false, true)
	o._putProp("getPrototypeOf", r.newNativeFunc("getPrototypeOf", 1, r.object_getPrototypeOf), true, false, true)
	o._putProp("getOwnPropertyNames", r.newNativeFunc("getOwnPropertyNames", 1, r.object_getOwnPropertyNames), true, false, true)
	o._putProp("create", r.newNativeFunc("create", 2, r.object_create), true, false, true)
	o._putProp("seal", r.newNativeFunc("seal", 1, r.object_seal), true, false, true)
	o._putProp("freeze", r.newNativeFunc("freeze", 1, r.object_freeze), true, false, true)
	o._putProp("preventExtensions", r.newNativeFunc("preventExtensions", 1, r.object_preventExtensions), true, false, true)
	o._putProp("isSealed", r.newNativeFunc("isSealed", 1, r.object_isSealed), true, false, true)
	o._putProp("isFrozen", r.newNativeFunc("isFrozen", 1, r.object_isFrozen), true, false, true)
	o._putProp("isExtensible", r.newNativeFunc("isExtensible", 1, r.object_isExtensible), true, false, true)
	o._putProp("keys", r.newNativeFunc("keys", 1, r.object_keys), true, false, true)

	r.addToGlobal("Object", r.global.Object)
}

func (r *Runtime) addToGlobal(name string, value Value) {
	r.globalObject.self._putProp(name, value, true, false, true)
}
