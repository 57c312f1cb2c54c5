package escore

import (
	"math"
)

func (r *Runtime) builtin_eval(call FunctionCall) Value {
	return r.evalCode(call.Argument(0), false)
}

func (r *Runtime) thisPrimitive(this Value, class string) Value {
	switch v := this.(type) {
	case *Object:
		if p, ok := v.self.(*primitiveValueObject); ok && p.class == class {
			return p.pValue
		}
	case valueInt, valueFloat:
		if class == classNumber {
			return v
		}
	case valueString:
		if class == classString {
			return v
		}
	case valueBool:
		if class == classBoolean {
			return v
		}
	}
	panic(r.typeError("%s.prototype.valueOf requires that 'this' be a %s", class, class))
}

func (r *Runtime) initPrimitive(class string, value Value, convert func(args []Value) Value) (ctor, proto *Object) {
	proto = r.newPrimitiveObject(value, r.global.ObjectPrototype, class)
	valueOf := func(call FunctionCall) Value {
		return r.thisPrimitive(call.This, class)
	}
	proto.self._putProp("valueOf", r.newNativeFunc("valueOf", 0, valueOf), true, false, true)
	proto.self._putProp("toString", r.newNativeFunc("toString", 0, func(call FunctionCall) Value {
		return newStringValue(valueOf(call).String())
	}), true, false, true)

	ctor = r.newNativeFuncObj(class, 1, func(call FunctionCall) Value {
		return convert(call.Arguments)
	}, func(args []Value) *Object {
		return r.newPrimitiveObject(convert(args), proto, class)
	}, proto).val
	r.addToGlobal(class, ctor)
	return
}

func (r *Runtime) initPrimitives() {
	r.global.String, r.global.StringPrototype = r.initPrimitive(classString, stringEmpty, func(args []Value) Value {
		if len(args) > 0 {
			return newStringValue(r.toPrimitive(args[0], hintString).String())
		}
		return stringEmpty
	})
	r.global.Number, r.global.NumberPrototype = r.initPrimitive(classNumber, valueInt(0), func(args []Value) Value {
		if len(args) > 0 {
			return r.toNumberValue(args[0])
		}
		return valueInt(0)
	})
	r.global.Boolean, r.global.BooleanPrototype = r.initPrimitive(classBoolean, valueFalse, func(args []Value) Value {
		if len(args) > 0 {
			return valueBool(args[0].ToBoolean())
		}
		return valueFalse
	})
	n := r.global.Number.self
	n._putProp("NaN", _NaN, false, false, false)
	n._putProp("POSITIVE_INFINITY", _positiveInf, false, false, false)
	n._putProp("NEGATIVE_INFINITY", _negativeInf, false, false, false)
	n._putProp("MAX_VALUE", valueFloat(math.MaxFloat64), false, false, false)
	n._putProp("MIN_VALUE", valueFloat(5e-324), false, false, false)
}

func (r *Runtime) initGlobalObject() {
	o := r.globalObject.self
	o._putProp("NaN", _NaN, false, false, false)
	o._putProp("undefined", _undefined, false, false, false)
	o._putProp("Infinity", _positiveInf, false, false, false)

	r.global.Eval = r.newNativeFunc(stringEval, 1, r.builtin_eval)
	r.addToGlobal(stringEval, r.global.Eval)
	o._putProp("isNaN", r.newNativeFunc("isNaN", 1, func(call FunctionCall) Value {
		return valueBool(math.IsNaN(r.toNumber(call.Argument(0))))
	}), true, false, true)
}
