package escore

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func mustException(t *testing.T, err error, kind ErrorKind, message string) {
	t.Helper()
	var ex *Exception
	if !errors.As(err, &ex) {
		t.Fatalf("Expected an exception, got %v", err)
	}
	if ex.Kind() != kind || ex.Message() != message {
		t.Fatalf("Unexpected exception: %v (%s)", ex.Message(), ex.Kind())
	}
}

func staticMethod(t *testing.T, r *Runtime, ctor, name string) Callable {
	t.Helper()
	c, ok := r.Get(ctor).(*Object)
	if !ok {
		t.Fatalf("%s is not an object", ctor)
	}
	f, ok := AssertFunction(c.Get(name))
	if !ok {
		t.Fatalf("%s.%s is not a function", ctor, name)
	}
	return f
}

func descriptorObject(r *Runtime, fields map[string]interface{}) *Object {
	o := r.NewObject()
	for k, v := range fields {
		o.self._putProp(k, r.ToValue(v), true, true, true)
	}
	return o
}

func TestFreeze(t *testing.T) {
	r := New()
	o := r.NewObject()
	if err := o.Set("a", 1); err != nil {
		t.Fatal(err)
	}
	if err := o.DefineAccessorProperty("g", r.NewFunction("g", 0, func(FunctionCall) Value { return valueInt(2) }), nil, FLAG_TRUE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := r.Freeze(o); err != nil {
			t.Fatal(err)
		}
		if !r.IsFrozen(o) || o.self.isExtensible() {
			t.Fatal("object is not frozen")
		}
	}

	err := o.DefineDataProperty("a", valueInt(2), FLAG_NOT_SET, FLAG_NOT_SET, FLAG_NOT_SET)
	mustException(t, err, ErrorKindTypeError, "TypeError: cannot redefine property")
	mustException(t, o.Set("a", 3), ErrorKindTypeError, "TypeError: Cannot assign to read only property 'a'")
	mustException(t, o.Set("b", 3), ErrorKindTypeError, "TypeError: Cannot add property b, object is not extensible")
	if v := o.Get("a"); !v.SameAs(valueInt(1)) {
		t.Fatalf("a: %v", v)
	}

	desc, _ := o.GetOwnPropertyDescriptor("g")
	if desc.Configurable != FLAG_FALSE || desc.Writable != FLAG_NOT_SET {
		t.Fatalf("accessor after freeze: %+v", desc)
	}
	if err := o.SetPrototype(o.Prototype()); err != nil {
		t.Fatalf("setting the same prototype: %v", err)
	}
	mustException(t, o.SetPrototype(nil), ErrorKindTypeError, "TypeError: [object Object] is not extensible")
}

func TestNonConfigurableCannotChange(t *testing.T) {
	r := New()
	o := r.NewObject()
	if err := o.DefineDataProperty("p", valueInt(1), FLAG_FALSE, FLAG_FALSE, FLAG_FALSE); err != nil {
		t.Fatal(err)
	}
	err := o.DefineDataProperty("p", valueInt(1), FLAG_NOT_SET, FLAG_NOT_SET, FLAG_TRUE)
	mustException(t, err, ErrorKindTypeError, "TypeError: cannot redefine property")

	getter := r.NewFunction("", 0, func(FunctionCall) Value { return valueInt(1) })
	err = o.DefineAccessorProperty("p", getter, nil, FLAG_NOT_SET, FLAG_NOT_SET)
	mustException(t, err, ErrorKindTypeError, "TypeError: cannot redefine property")

	if err := o.DefineDataProperty("p", valueInt(1), FLAG_FALSE, FLAG_FALSE, FLAG_FALSE); err != nil {
		t.Fatalf("identical redefinition: %v", err)
	}
	if err := o.Delete("p"); err == nil {
		t.Fatal("deleted a non-configurable property")
	}
}

func TestKeysSparseArrayWithAccessor(t *testing.T) {
	r := New()
	arr := r.newArrayValues([]Value{valueInt(0), nil, nil, nil, nil, valueInt(5)})
	getter := r.NewFunction("", 0, func(FunctionCall) Value { return _undefined })
	if err := arr.DefineAccessorProperty("3", getter, nil, FLAG_TRUE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	if keys := arr.Keys(); !reflect.DeepEqual(keys, []string{"0", "3", "5"}) {
		t.Fatalf("Keys: %v", keys)
	}

	keys, err := staticMethod(t, r, "Object", "keys")(_undefined, arr)
	if err != nil {
		t.Fatal(err)
	}
	if exp := keys.Export(); !reflect.DeepEqual(exp, []interface{}{"0", "3", "5"}) {
		t.Fatalf("Object.keys: %v", exp)
	}

	names := arr.GetOwnPropertyNames()
	if !reflect.DeepEqual(names, []string{"0", "3", "5", "length"}) {
		t.Fatalf("GetOwnPropertyNames: %v", names)
	}
}

func TestDescriptorSnapshot(t *testing.T) {
	r := New()
	o := r.NewObject()
	if err := o.DefineDataProperty("p", valueInt(1), FLAG_TRUE, FLAG_FALSE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	desc, ok := o.GetOwnPropertyDescriptor("p")
	if !ok {
		t.Fatal("no descriptor")
	}
	if !desc.Value.SameAs(valueInt(1)) || desc.Writable != FLAG_TRUE || desc.Configurable != FLAG_FALSE || desc.Enumerable != FLAG_TRUE {
		t.Fatalf("descriptor: %+v", desc)
	}
	desc.Value = valueInt(100)
	desc.Writable = FLAG_FALSE
	if v := o.Get("p"); !v.SameAs(valueInt(1)) {
		t.Fatalf("snapshot mutation leaked: %v", v)
	}

	// The script-visible descriptor is a fresh object too.
	jsDesc, err := staticMethod(t, r, "Object", "getOwnPropertyDescriptor")(_undefined, o, newStringValue("p"))
	if err != nil {
		t.Fatal(err)
	}
	d := jsDesc.(*Object)
	if err := d.Set("value", 7); err != nil {
		t.Fatal(err)
	}
	if v := o.Get("p"); !v.SameAs(valueInt(1)) {
		t.Fatalf("descriptor object mutation leaked: %v", v)
	}
	if keys := d.Keys(); !reflect.DeepEqual(keys, []string{"value", "writable", "enumerable", "configurable"}) {
		t.Fatalf("descriptor keys: %v", keys)
	}
}

func TestDescriptorFromObject(t *testing.T) {
	r := New()
	src := descriptorObject(r, map[string]interface{}{"value": 1, "extra": true})
	desc := r.toPropertyDescriptor(src)
	out, ok := desc.toValue(r).(*Object)
	if !ok || out == src {
		t.Fatalf("expected a fresh descriptor object, got %v", out)
	}
	if keys := out.Keys(); !reflect.DeepEqual(keys, []string{"value"}) {
		t.Fatalf("descriptor keys: %v", keys)
	}
	if d := r.toPropertyDescriptor(r.NewObject()); !d.Empty() {
		t.Fatalf("{} must convert to an empty descriptor: %+v", d)
	}
}

func TestDefinePropertiesKeepsAttributes(t *testing.T) {
	// var arr = [12]; Object.defineProperties(arr, {"0": {value: undefined}})
	r := New()
	arr := r.NewArray(12)
	props := r.NewObject()
	props.self._putProp("0", descriptorObject(r, map[string]interface{}{"value": _undefined}), true, true, true)
	if err := r.DefineProperties(arr, props); err != nil {
		t.Fatal(err)
	}
	desc, _ := arr.GetOwnPropertyDescriptor("0")
	if desc.Value != _undefined || desc.Writable != FLAG_TRUE || desc.Enumerable != FLAG_TRUE || desc.Configurable != FLAG_TRUE {
		t.Fatalf("descriptor: %+v", desc)
	}
}

func TestDefinePropertiesNoRollback(t *testing.T) {
	r := New()
	o := r.NewObject()
	if err := o.DefineDataProperty("fixed", valueInt(1), FLAG_FALSE, FLAG_FALSE, FLAG_FALSE); err != nil {
		t.Fatal(err)
	}
	props := r.NewObject()
	props.self._putProp("a", descriptorObject(r, map[string]interface{}{"value": 1}), true, true, true)
	props.self._putProp("fixed", descriptorObject(r, map[string]interface{}{"value": 2}), true, true, true)
	props.self._putProp("z", descriptorObject(r, map[string]interface{}{"value": 3}), true, true, true)

	mustException(t, r.DefineProperties(o, props), ErrorKindTypeError, "TypeError: cannot redefine property")
	if v := o.Get("a"); v == nil || !v.SameAs(valueInt(1)) {
		t.Fatalf("a: %v", v)
	}
	if o.Get("z") != nil {
		t.Fatal("z was defined after the failure")
	}
}

func TestDefinePropertiesValidatesFirst(t *testing.T) {
	r := New()
	o := r.NewObject()
	props := r.NewObject()
	props.self._putProp("a", descriptorObject(r, map[string]interface{}{"value": 1}), true, true, true)
	props.self._putProp("b", descriptorObject(r, map[string]interface{}{"get": 1}), true, true, true)
	mustException(t, r.DefineProperties(o, props), ErrorKindTypeError, "TypeError: Getter must be a function: 1")
	if o.Get("a") != nil {
		t.Fatal("a was defined although a descriptor was invalid")
	}
}

func TestIndexedAccessorToData(t *testing.T) {
	r := New()
	arr := r.NewArray()
	getter := r.NewFunction("getFunc", 0, func(FunctionCall) Value { return newStringValue("data") })
	setter := r.NewFunction("setFunc", 1, func(FunctionCall) Value { return _undefined })
	if err := arr.DefineAccessorProperty("0", getter, setter, FLAG_FALSE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}

	defineProperty := staticMethod(t, r, "Object", "defineProperty")
	_, err := defineProperty(_undefined, arr, newStringValue("0"), descriptorObject(r, map[string]interface{}{"value": 1001}))
	mustException(t, err, ErrorKindTypeError, "TypeError: cannot redefine property")

	desc, _ := arr.GetOwnPropertyDescriptor("0")
	if desc.Value != nil || desc.Getter != getter || desc.Setter != setter {
		t.Fatalf("descriptor after failure: %+v", desc)
	}
	if l := arr.Get("length"); !l.SameAs(valueInt(1)) {
		t.Fatalf("length: %v", l)
	}
}

func TestPrototypeChainCap(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := New(WithMaxPrototypeChain(2), WithLogger(logger))

	base := r.NewObject()
	if err := base.Set("deep", 1); err != nil {
		t.Fatal(err)
	}
	o := base
	for i := 0; i < 3; i++ {
		child := r.NewObject()
		if err := child.SetPrototype(o); err != nil {
			t.Fatal(err)
		}
		o = child
	}
	if v := o.Get("deep"); v != nil {
		t.Fatalf("lookup went past the cap: %v", v)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data["property"] != "deep" {
		t.Fatalf("unexpected log entry: %+v", entry)
	}
}

func TestCyclicPrototype(t *testing.T) {
	r := New()
	a, b := r.NewObject(), r.NewObject()
	if err := b.SetPrototype(a); err != nil {
		t.Fatal(err)
	}
	mustException(t, a.SetPrototype(b), ErrorKindTypeError, "TypeError: Cyclic __proto__ value")
}

func TestSetterAndGetterOnPrototype(t *testing.T) {
	r := New()
	var got Value
	proto := r.NewObject()
	setter := r.NewFunction("", 1, func(call FunctionCall) Value {
		got = call.Argument(0)
		return _undefined
	})
	if err := proto.DefineAccessorProperty("x", nil, setter, FLAG_TRUE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	o := r.NewObject()
	if err := o.SetPrototype(proto); err != nil {
		t.Fatal(err)
	}
	if err := o.Set("x", 5); err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.SameAs(valueInt(5)) || o.self.hasOwnPropertyStr("x") {
		t.Fatalf("setter was not used: %v", got)
	}

	if err := proto.DefineAccessorProperty("y", r.NewFunction("", 0, func(FunctionCall) Value { return valueInt(1) }), nil, FLAG_TRUE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	mustException(t, o.Set("y", 1), ErrorKindTypeError, "TypeError: Cannot set property y of [object Object] which has only a getter")
}

func TestInheritedReadOnly(t *testing.T) {
	r := New()
	proto := r.NewObject()
	if err := proto.DefineDataProperty("ro", valueInt(1), FLAG_FALSE, FLAG_TRUE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	o := r.NewObject()
	_ = o.SetPrototype(proto)
	mustException(t, o.Set("ro", 2), ErrorKindTypeError, "TypeError: Cannot assign to read only property 'ro'")
	if o.self.hasOwnPropertyStr("ro") {
		t.Fatal("shadowing property was created")
	}
}

func BenchmarkDefineDataProperty(b *testing.B) {
	r := New()
	o := r.NewObject()
	v := valueInt(123)
	for i := 0; i < b.N; i++ {
		_ = o.DefineDataProperty("test", v, FLAG_TRUE, FLAG_TRUE, FLAG_TRUE)
	}
}

func BenchmarkGetStr(b *testing.B) {
	r := New()
	o := r.NewObject()
	_ = o.Set("test", 1)
	for i := 0; i < b.N; i++ {
		o.getStr("test", nil)
	}
}
