package escore

type Flag int

const (
	FLAG_NOT_SET Flag = iota
	FLAG_FALSE
	FLAG_TRUE
)

func (f Flag) Bool() bool {
	return f == FLAG_TRUE
}

func ToFlag(b bool) Flag {
	if b {
		return FLAG_TRUE
	}
	return FLAG_FALSE
}

// PropertyDescriptor is a partial description of a property as accepted by Object.defineProperty.
// A nil Value, Getter or Setter means the field is absent.
type PropertyDescriptor struct {
	Value Value

	Writable, Configurable, Enumerable Flag

	Getter, Setter Value
}

func (p *PropertyDescriptor) Empty() bool {
	var empty PropertyDescriptor
	return *p == empty
}

// IsAccessor reports whether the descriptor carries a getter or a setter.
func (p *PropertyDescriptor) IsAccessor() bool {
	return p.Getter != nil || p.Setter != nil
}

// IsData reports whether the descriptor carries a value or a writable attribute.
func (p *PropertyDescriptor) IsData() bool {
	return p.Value != nil || p.Writable != FLAG_NOT_SET
}

func (p *PropertyDescriptor) IsGeneric() bool {
	return !p.IsAccessor() && !p.IsData()
}

// toValue implements FromPropertyDescriptor (ES5 8.10.5): only the fields of
// the descriptor's own variant end up on the result.
func (p *PropertyDescriptor) toValue(r *Runtime) Value {
	if p.Empty() {
		return _undefined
	}
	o := r.NewObject()
	s := o.self

	if p.Value != nil {
		s._putProp("value", p.Value, true, true, true)
	}

	if p.Writable != FLAG_NOT_SET {
		s._putProp("writable", valueBool(p.Writable.Bool()), true, true, true)
	}

	if p.Getter != nil {
		s._putProp("get", p.Getter, true, true, true)
	}

	if p.Setter != nil {
		s._putProp("set", p.Setter, true, true, true)
	}

	if p.Enumerable != FLAG_NOT_SET {
		s._putProp("enumerable", valueBool(p.Enumerable.Bool()), true, true, true)
	}

	if p.Configurable != FLAG_NOT_SET {
		s._putProp("configurable", valueBool(p.Configurable.Bool()), true, true, true)
	}

	return o
}

// valueProperty is the stored form of a property. Exactly one of the data
// fields (value, writable) or the accessor fields (getterFunc, setterFunc) is
// meaningful, selected by accessor.
type valueProperty struct {
	value        Value
	writable     bool
	configurable bool
	enumerable   bool
	accessor     bool
	getterFunc   *Object
	setterFunc   *Object
}

func (p *valueProperty) isWritable() bool {
	return p.writable || p.setterFunc != nil
}

func (p *valueProperty) get(this Value) Value {
	if !p.accessor {
		return p.value
	}
	if p.getterFunc == nil {
		return _undefined
	}
	call, _ := p.getterFunc.self.assertCallable()
	return call(FunctionCall{
		This: this,
	})
}

func (p *valueProperty) set(this, v Value) {
	if !p.accessor {
		p.value = v
		return
	}
	if p.setterFunc != nil {
		call, _ := p.setterFunc.self.assertCallable()
		call(FunctionCall{
			This:      this,
			Arguments: []Value{v},
		})
	}
}

// descriptor returns a complete snapshot of the stored property. Mutating the
// result never affects the table.
func (p *valueProperty) descriptor() PropertyDescriptor {
	d := PropertyDescriptor{
		Enumerable:   ToFlag(p.enumerable),
		Configurable: ToFlag(p.configurable),
	}
	if p.accessor {
		d.Getter, d.Setter = _undefined, _undefined
		if p.getterFunc != nil {
			d.Getter = p.getterFunc
		}
		if p.setterFunc != nil {
			d.Setter = p.setterFunc
		}
	} else {
		d.Value = p.value
		d.Writable = ToFlag(p.writable)
	}
	return d
}

// toPropertyDescriptor implements ToPropertyDescriptor (ES5 8.10.5).
func (r *Runtime) toPropertyDescriptor(v Value) (ret PropertyDescriptor) {
	if o, ok := v.(*Object); ok {
		ret.Value = r.getPropStr(o, "value")

		if p := r.getPropStr(o, "writable"); p != nil {
			ret.Writable = ToFlag(p.ToBoolean())
		}
		if p := r.getPropStr(o, "enumerable"); p != nil {
			ret.Enumerable = ToFlag(p.ToBoolean())
		}
		if p := r.getPropStr(o, "configurable"); p != nil {
			ret.Configurable = ToFlag(p.ToBoolean())
		}

		ret.Getter = r.getPropStr(o, "get")
		ret.Setter = r.getPropStr(o, "set")

		if ret.Getter != nil && ret.Getter != _undefined && !isCallable(ret.Getter) {
			r.typeErrorResult(true, "Getter must be a function: %s", ret.Getter.String())
		}

		if ret.Setter != nil && ret.Setter != _undefined && !isCallable(ret.Setter) {
			r.typeErrorResult(true, "Setter must be a function: %s", ret.Setter.String())
		}

		if ret.IsAccessor() && ret.IsData() {
			r.typeErrorResult(true, "Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
		}
	} else {
		r.typeErrorResult(true, "Property description must be an object: %s", v.String())
	}

	return
}

// getPropStr returns nil when the object (or its prototypes) has no property name,
// which is how absent descriptor fields are told apart from undefined ones.
func (r *Runtime) getPropStr(o *Object, name string) Value {
	if !o.hasPropertyStr(name) {
		return nil
	}
	return o.getStr(name, nil)
}

func isCallable(v Value) bool {
	if o, ok := v.(*Object); ok {
		_, ok = o.self.assertCallable()
		return ok
	}
	return false
}
