package escore

import (
	"github.com/sirupsen/logrus"
)

const (
	classObject    = "Object"
	classArray     = "Array"
	classFunction  = "Function"
	classNumber    = "Number"
	classString    = "String"
	classBoolean   = "Boolean"
	classError     = "Error"
	classArguments = "Arguments"
	classGlobal    = "global"
)

type Object struct {
	runtime *Runtime
	self    objectImpl
}

type objectImpl interface {
	className() string
	getOwnPropStr(name string) *valueProperty
	hasOwnPropertyStr(name string) bool
	defineOwnPropertyStr(name string, desc PropertyDescriptor, throw bool) bool
	deleteStr(name string, throw bool) bool
	proto() *Object
	setProto(proto *Object, throw bool) bool
	isExtensible() bool
	preventExtensions(throw bool) bool
	ownKeys(all bool, accum []string) []string
	assertCallable() (call func(FunctionCall) Value, ok bool)
	assertConstructor() func(args []Value) *Object
	hasInstance(v Value) bool
	export() interface{}

	_putProp(name string, value Value, writable, enumerable, configurable bool) *valueProperty
}

type baseObject struct {
	class      string
	val        *Object
	prototype  *Object
	extensible bool

	propertyTable
}

type primitiveValueObject struct {
	baseObject
	pValue Value
}

func (o *primitiveValueObject) export() interface{} {
	return o.pValue.Export()
}

func (o *baseObject) init() {
	o.propertyTable.init()
}

func (o *baseObject) className() string {
	return o.class
}

func (o *baseObject) getOwnPropStr(name string) *valueProperty {
	return o.get(name)
}

func (o *baseObject) hasOwnPropertyStr(name string) bool {
	return o.values[name] != nil
}

func (o *baseObject) defineOwnPropertyStr(name string, descr PropertyDescriptor, throw bool) bool {
	if err := o.define(name, descr, o.extensible); err != nil {
		o.val.runtime.typeErrorResult(throw, "%s", err)
		return false
	}
	return true
}

func (o *baseObject) deleteStr(name string, throw bool) bool {
	if !o.delete(name) {
		o.val.runtime.typeErrorResult(throw, "Cannot delete property '%s' of %s", name, o.val.objectString())
		return false
	}
	return true
}

func (o *baseObject) proto() *Object {
	return o.prototype
}

func (o *baseObject) setProto(proto *Object, throw bool) bool {
	current := o.prototype
	if current == proto {
		return true
	}
	if !o.extensible {
		o.val.runtime.typeErrorResult(throw, "%s is not extensible", o.val.objectString())
		return false
	}
	for p := proto; p != nil; {
		if p == o.val {
			o.val.runtime.typeErrorResult(throw, "Cyclic __proto__ value")
			return false
		}
		p = p.self.proto()
	}
	o.prototype = proto
	return true
}

func (o *baseObject) isExtensible() bool {
	return o.extensible
}

func (o *baseObject) preventExtensions(bool) bool {
	o.extensible = false
	return true
}

func (o *baseObject) ownKeys(all bool, accum []string) []string {
	return o.keys(all, accum)
}

func (o *baseObject) assertCallable() (func(FunctionCall) Value, bool) {
	return nil, false
}

func (o *baseObject) assertConstructor() func(args []Value) *Object {
	return nil
}

func (o *baseObject) hasInstance(Value) bool {
	panic(o.val.runtime.typeError("Expecting a function in instanceof check, but got %s", o.val.objectString()))
}

func (o *baseObject) export() interface{} {
	m := make(map[string]interface{})
	for _, name := range o.ownKeys(false, nil) {
		if v := o.val.getStr(name, nil); v != nil {
			m[name] = v.Export()
		}
	}
	return m
}

// _putProp defines or replaces an own data property without any checks. It is
// used when setting up built-ins.
func (o *baseObject) _putProp(name string, value Value, writable, enumerable, configurable bool) *valueProperty {
	p := &valueProperty{
		value:        value,
		writable:     writable,
		enumerable:   enumerable,
		configurable: configurable,
	}
	o.put(name, p)
	return p
}

func (o *baseObject) _putAccessor(name string, getter, setter *Object, enumerable, configurable bool) *valueProperty {
	p := &valueProperty{
		accessor:     true,
		getterFunc:   getter,
		setterFunc:   setter,
		enumerable:   enumerable,
		configurable: configurable,
	}
	o.put(name, p)
	return p
}

// lookup implements the prototype chain walk of [[GetProperty]] (ES5 8.12.2).
// The walk gives up after the configured number of links.
func (o *Object) lookup(name string) *valueProperty {
	r := o.runtime
	depth := 0
	for obj := o; obj != nil; obj = obj.self.proto() {
		if depth > r.opts.maxPrototypeChain {
			r.logger.WithFields(logrus.Fields{
				"property": name,
				"limit":    r.opts.maxPrototypeChain,
			}).Warn("prototype chain too long, lookup abandoned")
			return nil
		}
		if prop := obj.self.getOwnPropStr(name); prop != nil {
			return prop
		}
		depth++
	}
	return nil
}

// getStr implements [[Get]]. It returns nil when the property does not exist.
func (o *Object) getStr(name string, receiver Value) Value {
	prop := o.lookup(name)
	if prop == nil {
		return nil
	}
	if receiver == nil {
		receiver = o
	}
	return prop.get(receiver)
}

func (o *Object) hasPropertyStr(name string) bool {
	return o.lookup(name) != nil
}

// setStr implements [[Put]] (ES5 8.12.5).
func (o *Object) setStr(name string, val Value, throw bool) {
	r := o.runtime
	if own := o.self.getOwnPropStr(name); own != nil {
		if own.accessor {
			if own.setterFunc == nil {
				r.typeErrorResult(throw, "Cannot set property %s of %s which has only a getter", name, o.objectString())
				return
			}
			own.set(o, val)
			return
		}
		if !own.writable {
			r.typeErrorResult(throw, "Cannot assign to read only property '%s'", name)
			return
		}
		o.self.defineOwnPropertyStr(name, PropertyDescriptor{Value: val}, throw)
		return
	}
	var inherited *valueProperty
	if proto := o.self.proto(); proto != nil {
		inherited = proto.lookup(name)
	}
	if inherited != nil {
		if inherited.accessor {
			if inherited.setterFunc == nil {
				r.typeErrorResult(throw, "Cannot set property %s of %s which has only a getter", name, o.objectString())
				return
			}
			inherited.set(o, val)
			return
		}
		if !inherited.writable {
			r.typeErrorResult(throw, "Cannot assign to read only property '%s'", name)
			return
		}
	}
	if !o.self.isExtensible() {
		r.typeErrorResult(throw, "Cannot add property %s, object is not extensible", name)
		return
	}
	o.self.defineOwnPropertyStr(name, PropertyDescriptor{
		Value:        val,
		Writable:     FLAG_TRUE,
		Enumerable:   FLAG_TRUE,
		Configurable: FLAG_TRUE,
	}, throw)
}

// objectString renders the object without calling into script code.
func (o *Object) objectString() string {
	if f, ok := o.self.(interface{ funcName() string }); ok {
		return "function " + f.funcName()
	}
	return "[object " + o.self.className() + "]"
}

// freeze implements Object.freeze (ES5 15.2.3.9).
func (o *Object) freeze() {
	for _, name := range o.self.ownKeys(true, nil) {
		prop := o.self.getOwnPropStr(name)
		if prop == nil {
			continue
		}
		descr := PropertyDescriptor{
			Configurable: FLAG_FALSE,
		}
		if !prop.accessor {
			descr.Writable = FLAG_FALSE
		}
		o.self.defineOwnPropertyStr(name, descr, true)
	}
	o.self.preventExtensions(true)
}

func (o *Object) seal() {
	for _, name := range o.self.ownKeys(true, nil) {
		o.self.defineOwnPropertyStr(name, PropertyDescriptor{
			Configurable: FLAG_FALSE,
		}, true)
	}
	o.self.preventExtensions(true)
}

func (o *Object) isFrozen() bool {
	for _, name := range o.self.ownKeys(true, nil) {
		prop := o.self.getOwnPropStr(name)
		if prop == nil {
			continue
		}
		if prop.configurable || !prop.accessor && prop.writable {
			return false
		}
	}
	return !o.self.isExtensible()
}

func (o *Object) isSealed() bool {
	for _, name := range o.self.ownKeys(true, nil) {
		if prop := o.self.getOwnPropStr(name); prop != nil && prop.configurable {
			return false
		}
	}
	return !o.self.isExtensible()
}

// getOwnPropertyDescriptor returns a snapshot of the own property name.
func (o *Object) getOwnPropertyDescriptor(name string) (PropertyDescriptor, bool) {
	prop := o.self.getOwnPropStr(name)
	if prop == nil {
		return PropertyDescriptor{}, false
	}
	return prop.descriptor(), true
}

func instanceOfOperator(o Value, c *Object) bool {
	return c.self.hasInstance(o)
}

// ClassName returns the class name
func (o *Object) ClassName() string {
	return o.self.className()
}

// Prototype returns the Object's prototype, same as Object.getPrototypeOf(). If the prototype is null
// returns nil.
func (o *Object) Prototype() *Object {
	return o.self.proto()
}

// SetPrototype sets the Object's prototype, same as Object.setPrototypeOf(). Setting proto to nil
// is an equivalent of Object.setPrototypeOf(null).
func (o *Object) SetPrototype(proto *Object) error {
	return o.runtime.try(func() {
		o.self.setProto(proto, true)
	})
}

// Get an object's property by name. Returns nil if the property does not exist.
func (o *Object) Get(name string) Value {
	return o.getStr(name, nil)
}

// Keys returns the enumerable own keys: array indices ascending first, then
// the other names in insertion order.
func (o *Object) Keys() []string {
	return o.self.ownKeys(false, nil)
}

// GetOwnPropertyNames returns all own keys including non-enumerable ones.
func (o *Object) GetOwnPropertyNames() []string {
	return o.self.ownKeys(true, nil)
}

// GetOwnPropertyDescriptor returns a copy of the own property's descriptor.
func (o *Object) GetOwnPropertyDescriptor(name string) (PropertyDescriptor, bool) {
	return o.getOwnPropertyDescriptor(name)
}

// DefineDataProperty is a Go equivalent of Object.defineProperty(o, name, {value: value, writable: writable,
// configurable: configurable, enumerable: enumerable})
func (o *Object) DefineDataProperty(name string, value Value, writable, configurable, enumerable Flag) error {
	return o.logDefine(name, o.runtime.try(func() {
		o.self.defineOwnPropertyStr(name, PropertyDescriptor{
			Value:        value,
			Writable:     writable,
			Configurable: configurable,
			Enumerable:   enumerable,
		}, true)
	}))
}

// DefineAccessorProperty is a Go equivalent of Object.defineProperty(o, name, {get: getter, set: setter,
// configurable: configurable, enumerable: enumerable})
func (o *Object) DefineAccessorProperty(name string, getter, setter Value, configurable, enumerable Flag) error {
	return o.logDefine(name, o.runtime.try(func() {
		if getter == nil {
			getter = _undefined
		}
		if setter == nil {
			setter = _undefined
		}
		o.self.defineOwnPropertyStr(name, PropertyDescriptor{
			Getter:       getter,
			Setter:       setter,
			Configurable: configurable,
			Enumerable:   enumerable,
		}, true)
	}))
}

func (o *Object) logDefine(name string, err error) error {
	if err != nil {
		o.runtime.logger.WithField("property", name).WithError(err).Debug("define rejected")
	}
	return err
}

// Set a property through [[Put]] in strict mode: failures are returned as errors.
func (o *Object) Set(name string, value interface{}) error {
	return o.runtime.try(func() {
		o.setStr(name, o.runtime.ToValue(value), true)
	})
}

// Delete removes an own property, failing on non-configurable ones.
func (o *Object) Delete(name string) error {
	return o.runtime.try(func() {
		o.self.deleteStr(name, true)
	})
}
