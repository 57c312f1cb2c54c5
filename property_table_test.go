package escore

import (
	"reflect"
	"testing"
)

func newTestTable() *propertyTable {
	t := &propertyTable{}
	t.init()
	return t
}

func TestStrToIdx(t *testing.T) {
	for _, tc := range []struct {
		s   string
		idx uint32
		ok  bool
	}{
		{"0", 0, true},
		{"10", 10, true},
		{"4294967294", 4294967294, true},
		{"4294967295", 0, false},
		{"01", 0, false},
		{"-1", 0, false},
		{"1.0", 0, false},
		{"", 0, false},
		{"length", 0, false},
	} {
		idx, ok := strToIdx(tc.s)
		if ok != tc.ok || idx != tc.idx {
			t.Fatalf("strToIdx(%q) = %d, %v", tc.s, idx, ok)
		}
	}
}

func TestPropertyTableKeyOrder(t *testing.T) {
	tbl := newTestTable()
	for _, name := range []string{"b", "10", "a", "2", "01", "0"} {
		if err := tbl.define(name, PropertyDescriptor{Value: valueInt(1), Enumerable: FLAG_TRUE}, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := tbl.define("hidden", PropertyDescriptor{Value: valueInt(1)}, true); err != nil {
		t.Fatal(err)
	}
	if keys := tbl.keys(false, nil); !reflect.DeepEqual(keys, []string{"0", "2", "10", "b", "a", "01"}) {
		t.Fatalf("keys: %v", keys)
	}
	if keys := tbl.keys(true, nil); len(keys) != 7 || keys[6] != "hidden" {
		t.Fatalf("all keys: %v", keys)
	}

	tbl.remove("2")
	tbl.remove("a")
	if keys := tbl.keys(false, nil); !reflect.DeepEqual(keys, []string{"0", "10", "b", "01"}) {
		t.Fatalf("keys after remove: %v", keys)
	}
	if from := tbl.indicesFrom(1); !reflect.DeepEqual(from, []uint32{10}) {
		t.Fatalf("indicesFrom: %v", from)
	}
}

func TestPropertyTableAccessorOnlyKey(t *testing.T) {
	tbl := newTestTable()
	getter := &Object{}
	if err := tbl.define("3", PropertyDescriptor{Getter: getter, Enumerable: FLAG_TRUE}, true); err != nil {
		t.Fatal(err)
	}
	if keys := tbl.keys(false, nil); !reflect.DeepEqual(keys, []string{"3"}) {
		t.Fatalf("keys: %v", keys)
	}
	p := tbl.get("3")
	if !p.accessor || p.getterFunc != getter || p.setterFunc != nil {
		t.Fatalf("unexpected property: %+v", p)
	}
}

func TestPropertyTableDefineDefaults(t *testing.T) {
	tbl := newTestTable()
	if err := tbl.define("x", PropertyDescriptor{}, true); err != nil {
		t.Fatal(err)
	}
	d := tbl.get("x").descriptor()
	if d.Value != _undefined || d.Writable != FLAG_FALSE || d.Enumerable != FLAG_FALSE || d.Configurable != FLAG_FALSE {
		t.Fatalf("defaults: %+v", d)
	}

	// A partial update of an existing property only touches the given fields.
	if err := tbl.define("y", PropertyDescriptor{Value: valueInt(12), Writable: FLAG_TRUE, Enumerable: FLAG_TRUE, Configurable: FLAG_TRUE}, true); err != nil {
		t.Fatal(err)
	}
	if err := tbl.define("y", PropertyDescriptor{Value: _undefined}, true); err != nil {
		t.Fatal(err)
	}
	d = tbl.get("y").descriptor()
	if d.Value != _undefined || d.Writable != FLAG_TRUE || d.Enumerable != FLAG_TRUE || d.Configurable != FLAG_TRUE {
		t.Fatalf("after update: %+v", d)
	}
}

func TestPropertyTableNotExtensible(t *testing.T) {
	tbl := newTestTable()
	if err := tbl.define("x", PropertyDescriptor{Value: valueInt(1)}, false); err != errNotExtensible {
		t.Fatalf("err: %v", err)
	}
	if tbl.len() != 0 {
		t.Fatal("property was added")
	}
}

func TestPropertyTableNonConfigurable(t *testing.T) {
	getter, setter := &Object{}, &Object{}
	for _, tc := range []struct {
		name   string
		descr  PropertyDescriptor
		reject bool
	}{
		{"same attributes", PropertyDescriptor{Value: valueInt(1), Writable: FLAG_FALSE, Enumerable: FLAG_FALSE}, false},
		{"empty", PropertyDescriptor{}, false},
		{"configurable", PropertyDescriptor{Configurable: FLAG_TRUE}, true},
		{"enumerable", PropertyDescriptor{Enumerable: FLAG_TRUE}, true},
		{"writable", PropertyDescriptor{Writable: FLAG_TRUE}, true},
		{"value", PropertyDescriptor{Value: valueInt(2)}, true},
		{"accessor", PropertyDescriptor{Getter: getter}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tbl := newTestTable()
			if err := tbl.define("p", PropertyDescriptor{Value: valueInt(1)}, true); err != nil {
				t.Fatal(err)
			}
			err := tbl.define("p", tc.descr, true)
			if (err != nil) != tc.reject {
				t.Fatalf("err: %v", err)
			}
			if d := tbl.get("p").descriptor(); d.Value != valueInt(1) || d.IsAccessor() {
				t.Fatalf("property changed: %+v", d)
			}
		})
	}

	t.Run("accessor to data", func(t *testing.T) {
		tbl := newTestTable()
		if err := tbl.define("0", PropertyDescriptor{Getter: getter, Setter: setter, Enumerable: FLAG_TRUE}, true); err != nil {
			t.Fatal(err)
		}
		if err := tbl.define("0", PropertyDescriptor{Value: valueInt(1001)}, true); err != errRedefine {
			t.Fatalf("err: %v", err)
		}
		if err := tbl.define("0", PropertyDescriptor{Getter: getter, Setter: setter}, true); err != nil {
			t.Fatalf("identical accessor: %v", err)
		}
		if err := tbl.define("0", PropertyDescriptor{Setter: _undefined}, true); err != errRedefine {
			t.Fatalf("setter removal: %v", err)
		}
		p := tbl.get("0")
		if !p.accessor || p.getterFunc != getter || p.setterFunc != setter {
			t.Fatalf("property changed: %+v", p)
		}
	})

	t.Run("writable data", func(t *testing.T) {
		tbl := newTestTable()
		if err := tbl.define("w", PropertyDescriptor{Value: valueInt(1), Writable: FLAG_TRUE}, true); err != nil {
			t.Fatal(err)
		}
		if err := tbl.define("w", PropertyDescriptor{Value: valueInt(2)}, true); err != nil {
			t.Fatal(err)
		}
		if err := tbl.define("w", PropertyDescriptor{Writable: FLAG_FALSE}, true); err != nil {
			t.Fatal(err)
		}
		if err := tbl.define("w", PropertyDescriptor{Writable: FLAG_TRUE}, true); err != errRedefine {
			t.Fatalf("err: %v", err)
		}
		if d := tbl.get("w").descriptor(); d.Value != valueInt(2) || d.Writable != FLAG_FALSE {
			t.Fatalf("descriptor: %+v", d)
		}
	})
}

func TestPropertyTableVariantSwitch(t *testing.T) {
	tbl := newTestTable()
	if err := tbl.define("p", PropertyDescriptor{Value: valueInt(1), Writable: FLAG_TRUE, Enumerable: FLAG_TRUE, Configurable: FLAG_TRUE}, true); err != nil {
		t.Fatal(err)
	}
	before := tbl.get("p")
	getter := &Object{}
	if err := tbl.define("p", PropertyDescriptor{Getter: getter}, true); err != nil {
		t.Fatal(err)
	}
	p := tbl.get("p")
	if p != before {
		t.Fatal("the stored record must be updated in place")
	}
	if !p.accessor || p.value != nil || p.writable || !p.enumerable || !p.configurable {
		t.Fatalf("after switch: %+v", p)
	}
}

func TestPropertyTableDelete(t *testing.T) {
	tbl := newTestTable()
	_ = tbl.define("fixed", PropertyDescriptor{Value: valueInt(1)}, true)
	_ = tbl.define("loose", PropertyDescriptor{Value: valueInt(1), Configurable: FLAG_TRUE}, true)

	if tbl.delete("fixed") {
		t.Fatal("deleted a non-configurable property")
	}
	if !tbl.delete("loose") || tbl.get("loose") != nil {
		t.Fatal("configurable property was not deleted")
	}
	if !tbl.delete("missing") {
		t.Fatal("deleting a missing property succeeds")
	}
}
