package escore

import (
	"errors"
	"math"
	"sort"
	"strconv"
)

var (
	errRedefine      = errors.New("cannot redefine property")
	errNotExtensible = errors.New("cannot redefine property")
)

// propertyTable holds the own properties of an object. Array index keys are
// kept in ascending order in indices, every other key in insertion order in
// propNames.
type propertyTable struct {
	values    map[string]*valueProperty
	propNames []string
	indices   []uint32
}

func (t *propertyTable) init() {
	t.values = make(map[string]*valueProperty)
}

// strToIdx returns the array index denoted by s if s is its canonical form
// ("0" to "4294967294").
func strToIdx(s string) (uint32, bool) {
	if s == "" || len(s) > 10 {
		return 0, false
	}
	if s[0] == '0' {
		return 0, s == "0"
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	if n >= math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

func idxToStr(idx uint32) string {
	return strconv.FormatUint(uint64(idx), 10)
}

func (t *propertyTable) findIdx(idx uint32) int {
	return sort.Search(len(t.indices), func(i int) bool {
		return t.indices[i] >= idx
	})
}

func (t *propertyTable) get(name string) *valueProperty {
	return t.values[name]
}

func (t *propertyTable) len() int {
	return len(t.values)
}

// put stores p under name, appending the key to its partition if it is new.
func (t *propertyTable) put(name string, p *valueProperty) {
	if _, exists := t.values[name]; !exists {
		if idx, ok := strToIdx(name); ok {
			i := t.findIdx(idx)
			t.indices = append(t.indices, 0)
			copy(t.indices[i+1:], t.indices[i:])
			t.indices[i] = idx
		} else {
			t.propNames = append(t.propNames, name)
		}
	}
	t.values[name] = p
}

func (t *propertyTable) remove(name string) {
	delete(t.values, name)
	if idx, ok := strToIdx(name); ok {
		i := t.findIdx(idx)
		if i < len(t.indices) && t.indices[i] == idx {
			copy(t.indices[i:], t.indices[i+1:])
			t.indices = t.indices[:len(t.indices)-1]
		}
		return
	}
	for i, n := range t.propNames {
		if n == name {
			copy(t.propNames[i:], t.propNames[i+1:])
			t.propNames[len(t.propNames)-1] = ""
			t.propNames = t.propNames[:len(t.propNames)-1]
			break
		}
	}
}

func asFunc(v Value) *Object {
	if o, ok := v.(*Object); ok {
		return o
	}
	return nil
}

// define implements [[DefineOwnProperty]] (ES5 8.12.9) against the table.
// Defaults for fields absent from descr are false / undefined.
func (t *propertyTable) define(name string, descr PropertyDescriptor, extensible bool) error {
	existing := t.values[name]
	if existing == nil {
		if !extensible {
			return errNotExtensible
		}
		p := &valueProperty{
			enumerable:   descr.Enumerable.Bool(),
			configurable: descr.Configurable.Bool(),
		}
		if descr.IsAccessor() {
			p.accessor = true
			p.getterFunc = asFunc(descr.Getter)
			p.setterFunc = asFunc(descr.Setter)
		} else {
			p.writable = descr.Writable.Bool()
			p.value = descr.Value
			if p.value == nil {
				p.value = _undefined
			}
		}
		t.put(name, p)
		return nil
	}

	if !existing.configurable {
		if descr.Configurable == FLAG_TRUE {
			goto Reject
		}
		if descr.Enumerable != FLAG_NOT_SET && descr.Enumerable.Bool() != existing.enumerable {
			goto Reject
		}
	}

	switch {
	case descr.IsGeneric():
	case existing.accessor != descr.IsAccessor():
		if !existing.configurable {
			goto Reject
		}
		if existing.accessor {
			existing.accessor = false
			existing.getterFunc, existing.setterFunc = nil, nil
			existing.value = _undefined
		} else {
			existing.accessor = true
			existing.value = nil
		}
		existing.writable = false
	case !existing.accessor:
		if !existing.configurable && !existing.writable {
			if descr.Writable == FLAG_TRUE {
				goto Reject
			}
			if descr.Value != nil && !descr.Value.SameAs(existing.value) {
				goto Reject
			}
		}
	default:
		if !existing.configurable {
			if descr.Getter != nil && asFunc(descr.Getter) != existing.getterFunc {
				goto Reject
			}
			if descr.Setter != nil && asFunc(descr.Setter) != existing.setterFunc {
				goto Reject
			}
		}
	}

	if descr.Value != nil {
		existing.value = descr.Value
	}
	if descr.Writable != FLAG_NOT_SET {
		existing.writable = descr.Writable.Bool()
	}
	if descr.Getter != nil {
		existing.getterFunc = asFunc(descr.Getter)
	}
	if descr.Setter != nil {
		existing.setterFunc = asFunc(descr.Setter)
	}
	if descr.Enumerable != FLAG_NOT_SET {
		existing.enumerable = descr.Enumerable.Bool()
	}
	if descr.Configurable != FLAG_NOT_SET {
		existing.configurable = descr.Configurable.Bool()
	}
	return nil

Reject:
	return errRedefine
}

// delete removes a configurable property. A missing key counts as deleted.
func (t *propertyTable) delete(name string) bool {
	if p := t.values[name]; p != nil {
		if !p.configurable {
			return false
		}
		t.remove(name)
	}
	return true
}

// keys appends the own keys to accum: index keys ascending, then the rest in
// insertion order. Non-enumerable keys are skipped unless all is set.
func (t *propertyTable) keys(all bool, accum []string) []string {
	for _, idx := range t.indices {
		name := idxToStr(idx)
		if all || t.values[name].enumerable {
			accum = append(accum, name)
		}
	}
	for _, name := range t.propNames {
		if all || t.values[name].enumerable {
			accum = append(accum, name)
		}
	}
	return accum
}

// indicesBelow returns a copy of the index keys < to in ascending order.
func (t *propertyTable) indicesBelow(to uint32) []uint32 {
	return append([]uint32(nil), t.indices[:t.findIdx(to)]...)
}

// indicesFrom returns the index keys >= from in descending order.
func (t *propertyTable) indicesFrom(from uint32) []uint32 {
	i := t.findIdx(from)
	res := make([]uint32, 0, len(t.indices)-i)
	for j := len(t.indices) - 1; j >= i; j-- {
		res = append(res, t.indices[j])
	}
	return res
}
