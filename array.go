package escore

import (
	"math"
)

// arrayObject stores its elements in the property table like any other
// object; it only adds the length bookkeeping of ES5 15.4.5.1.
type arrayObject struct {
	baseObject
	lengthProp *valueProperty
}

func (a *arrayObject) init() {
	a.baseObject.init()
	a.lengthProp = a._putProp(stringLength, valueInt(0), true, false, false)
}

func (a *arrayObject) length() uint32 {
	return toUint32(a.lengthProp.value)
}

func (a *arrayObject) setLengthValue(l uint32) {
	a.lengthProp.value = intToValue(int64(l))
}

func (a *arrayObject) defineOwnPropertyStr(name string, descr PropertyDescriptor, throw bool) bool {
	if name == stringLength {
		return a.defineLength(descr, throw)
	}
	if idx, ok := strToIdx(name); ok {
		oldLen := a.length()
		if idx >= oldLen && !a.lengthProp.writable {
			a.val.runtime.typeErrorResult(throw, "%s", errRedefine)
			return false
		}
		if !a.baseObject.defineOwnPropertyStr(name, descr, throw) {
			return false
		}
		if idx >= oldLen {
			a.setLengthValue(idx + 1)
		}
		return true
	}
	return a.baseObject.defineOwnPropertyStr(name, descr, throw)
}

func (a *arrayObject) defineLength(descr PropertyDescriptor, throw bool) bool {
	if descr.Value == nil {
		return a.baseObject.defineOwnPropertyStr(stringLength, descr, throw)
	}
	r := a.val.runtime
	newLen := toUint32(descr.Value)
	if num := descr.Value.ToNumber().ToFloat(); float64(newLen) != num || math.IsNaN(num) {
		panic(r.rangeError("Invalid array length"))
	}
	descr.Value = intToValue(int64(newLen))
	oldLen := a.length()
	if newLen >= oldLen {
		return a.baseObject.defineOwnPropertyStr(stringLength, descr, throw)
	}
	if !a.lengthProp.writable {
		r.typeErrorResult(throw, "%s", errRedefine)
		return false
	}
	keepWritable := descr.Writable != FLAG_FALSE
	if !keepWritable {
		// length is made read-only only once the deletions went through
		descr.Writable = FLAG_TRUE
	}
	if !a.baseObject.defineOwnPropertyStr(stringLength, descr, throw) {
		return false
	}
	for _, idx := range a.indicesFrom(newLen) {
		if !a.delete(idxToStr(idx)) {
			a.setLengthValue(idx + 1)
			if !keepWritable {
				a.lengthProp.writable = false
			}
			r.typeErrorResult(throw, "%s", errRedefine)
			return false
		}
	}
	if !keepWritable {
		a.lengthProp.writable = false
	}
	return true
}

// maxDenseLength is the longest array-like walked index by index. Longer ones
// are visited through the elements they actually hold.
const maxDenseLength = 1 << 20

// export returns a slice, or for arrays longer than maxDenseLength the map a
// plain object exports to.
func (a *arrayObject) export() interface{} {
	if a.length() > maxDenseLength {
		return a.baseObject.export()
	}
	arr := make([]interface{}, a.length())
	for i := range arr {
		if v := a.val.getStr(idxToStr(uint32(i)), nil); v != nil {
			arr[i] = v.Export()
		}
	}
	return arr
}

func (r *Runtime) newArrayObject(proto *Object) *arrayObject {
	v := &Object{runtime: r}
	a := &arrayObject{}
	a.class = classArray
	a.val = v
	a.extensible = true
	v.self = a
	a.prototype = proto
	a.init()
	return a
}

// newArrayValues builds an array from values; a nil entry leaves a hole.
func (r *Runtime) newArrayValues(values []Value) *Object {
	a := r.newArrayObject(r.global.ArrayPrototype)
	for i, v := range values {
		if v != nil {
			a._putProp(idxToStr(uint32(i)), v, true, true, true)
		}
	}
	a.setLengthValue(uint32(len(values)))
	return a.val
}

func isArray(v Value) bool {
	if o, ok := v.(*Object); ok {
		_, ok = o.self.(*arrayObject)
		return ok
	}
	return false
}

// sparseIndices returns the own index keys of o below l when no object on its
// prototype chain holds index keys, so that every other index below l is a
// hole. ok is false when an inherited element could show through.
func sparseIndices(o *Object, l uint32) (indices []uint32, ok bool) {
	type indexed interface {
		indicesBelow(to uint32) []uint32
	}
	own, isIndexed := o.self.(indexed)
	if !isIndexed {
		return nil, false
	}
	for p := o.self.proto(); p != nil; p = p.self.proto() {
		pi, isIndexed := p.self.(indexed)
		if !isIndexed || len(pi.indicesBelow(l)) > 0 {
			return nil, false
		}
	}
	return own.indicesBelow(l), true
}
