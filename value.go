package escore

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

var (
	_NaN          Value = valueFloat(math.NaN())
	_positiveInf  Value = valueFloat(math.Inf(+1))
	_negativeInf  Value = valueFloat(math.Inf(-1))
	_negativeZero Value = valueFloat(math.Float64frombits(0 | (1 << 63)))
)

const (
	maxInt = 1 << 53
)

var (
	valueFalse    Value = valueBool(false)
	valueTrue     Value = valueBool(true)
	_null         Value = valueNull{}
	_undefined    Value = valueUndefined{}
	stringEmpty   Value = valueString("")
	stringEval          = "eval"
	stringLength        = "length"
	stringPrototype     = "prototype"
)

// Value is a JavaScript value held by the runtime. It is either a primitive or an *Object.
type Value interface {
	ToInteger() int64
	String() string
	ToFloat() float64
	ToNumber() Value
	ToBoolean() bool
	ToObject(*Runtime) *Object
	SameAs(Value) bool
	Equals(Value) bool
	StrictEquals(Value) bool
	Export() interface{}

	baseObject(r *Runtime) *Object
}

type valueInt int64
type valueFloat float64
type valueBool bool
type valueString string
type valueNull struct{}
type valueUndefined struct {
	valueNull
}

// FunctionCall is the argument of a native function.
type FunctionCall struct {
	This      Value
	Arguments []Value
}

func (f FunctionCall) Argument(idx int) Value {
	if idx < len(f.Arguments) {
		return f.Arguments[idx]
	}
	return _undefined
}

func intToValue(i int64) Value {
	if i >= -maxInt && i <= maxInt {
		return valueInt(i)
	}
	return valueFloat(float64(i))
}

func floatToValue(f float64) Value {
	if i := int64(f); float64(i) == f && i >= -maxInt && i <= maxInt {
		if i == 0 && math.Signbit(f) {
			return _negativeZero
		}
		return valueInt(i)
	}
	return valueFloat(f)
}

func newStringValue(s string) Value {
	return valueString(s)
}

// Undefined returns JS undefined value. Note if global 'undefined' property is changed this still returns the original value.
func Undefined() Value {
	return _undefined
}

// Null returns JS null value.
func Null() Value {
	return _null
}

// IsUndefined returns true if the supplied Value is undefined. Note, it checks against the real undefined, not
// against the global object's 'undefined' property.
func IsUndefined(v Value) bool {
	return v == _undefined
}

// IsNull returns true if the supplied Value is null.
func IsNull(v Value) bool {
	return v == _null
}

// TypeOf returns the result of the typeof operator for v.
func TypeOf(v Value) string {
	return typeOf(v)
}

func isNullish(v Value) bool {
	return v == nil || v == _undefined || v == _null
}

// NaN returns a JS NaN value.
func NaN() Value {
	return _NaN
}

// IsNaN returns true if the supplied value is NaN.
func IsNaN(v Value) bool {
	f, ok := v.(valueFloat)
	return ok && math.IsNaN(float64(f))
}

func (i valueInt) ToInteger() int64 {
	return int64(i)
}

func (i valueInt) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (i valueInt) ToFloat() float64 {
	return float64(i)
}

func (i valueInt) ToBoolean() bool {
	return i != 0
}

func (i valueInt) ToObject(r *Runtime) *Object {
	return r.newPrimitiveObject(i, r.global.NumberPrototype, classNumber)
}

func (i valueInt) ToNumber() Value {
	return i
}

func (i valueInt) SameAs(other Value) bool {
	return i == other
}

func (i valueInt) Equals(other Value) bool {
	switch o := other.(type) {
	case valueInt:
		return i == o
	case valueFloat:
		return float64(i) == float64(o)
	case valueString:
		return o.ToNumber().Equals(i)
	case valueBool:
		return int64(i) == o.ToInteger()
	case *Object:
		return i.Equals(o.runtime.toPrimitive(o, hintNumber))
	}

	return false
}

func (i valueInt) StrictEquals(other Value) bool {
	switch o := other.(type) {
	case valueInt:
		return i == o
	case valueFloat:
		return float64(i) == float64(o)
	}

	return false
}

func (i valueInt) baseObject(r *Runtime) *Object {
	return r.global.NumberPrototype
}

func (i valueInt) Export() interface{} {
	return int64(i)
}

func (b valueBool) ToInteger() int64 {
	if b {
		return 1
	}
	return 0
}

func (b valueBool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b valueBool) ToFloat() float64 {
	if b {
		return 1.0
	}
	return 0
}

func (b valueBool) ToBoolean() bool {
	return bool(b)
}

func (b valueBool) ToObject(r *Runtime) *Object {
	return r.newPrimitiveObject(b, r.global.BooleanPrototype, classBoolean)
}

func (b valueBool) ToNumber() Value {
	if b {
		return valueInt(1)
	}
	return valueInt(0)
}

func (b valueBool) SameAs(other Value) bool {
	if other, ok := other.(valueBool); ok {
		return b == other
	}
	return false
}

func (b valueBool) Equals(other Value) bool {
	if o, ok := other.(valueBool); ok {
		return b == o
	}
	return b.ToNumber().Equals(other)
}

func (b valueBool) StrictEquals(other Value) bool {
	if other, ok := other.(valueBool); ok {
		return b == other
	}
	return false
}

func (b valueBool) baseObject(r *Runtime) *Object {
	return r.global.BooleanPrototype
}

func (b valueBool) Export() interface{} {
	return bool(b)
}

func (n valueNull) ToInteger() int64 {
	return 0
}

func (n valueNull) String() string {
	return "null"
}

func (n valueNull) ToFloat() float64 {
	return 0
}

func (n valueNull) ToBoolean() bool {
	return false
}

func (n valueNull) ToObject(r *Runtime) *Object {
	r.typeErrorResult(true, "Cannot convert undefined or null to object")
	return nil
}

func (n valueNull) ToNumber() Value {
	return valueInt(0)
}

func (n valueNull) SameAs(other Value) bool {
	_, ok := other.(valueNull)
	return ok
}

func (n valueNull) Equals(other Value) bool {
	switch other.(type) {
	case valueUndefined, valueNull:
		return true
	}
	return false
}

func (n valueNull) StrictEquals(other Value) bool {
	_, ok := other.(valueNull)
	return ok
}

func (n valueNull) baseObject(*Runtime) *Object {
	return nil
}

func (n valueNull) Export() interface{} {
	return nil
}

func (u valueUndefined) String() string {
	return "undefined"
}

func (u valueUndefined) ToFloat() float64 {
	return math.NaN()
}

func (u valueUndefined) ToNumber() Value {
	return _NaN
}

func (u valueUndefined) SameAs(other Value) bool {
	_, ok := other.(valueUndefined)
	return ok
}

func (u valueUndefined) StrictEquals(other Value) bool {
	_, ok := other.(valueUndefined)
	return ok
}

func (f valueFloat) ToInteger() int64 {
	switch {
	case math.IsNaN(float64(f)):
		return 0
	case math.IsInf(float64(f), 1):
		return int64(math.MaxInt64)
	case math.IsInf(float64(f), -1):
		return int64(math.MinInt64)
	}
	return int64(f)
}

func (f valueFloat) String() string {
	return formatNumber(float64(f))
}

func (f valueFloat) ToFloat() float64 {
	return float64(f)
}

func (f valueFloat) ToBoolean() bool {
	return float64(f) != 0.0 && !math.IsNaN(float64(f))
}

func (f valueFloat) ToObject(r *Runtime) *Object {
	return r.newPrimitiveObject(f, r.global.NumberPrototype, classNumber)
}

func (f valueFloat) ToNumber() Value {
	return f
}

func (f valueFloat) SameAs(other Value) bool {
	switch o := other.(type) {
	case valueFloat:
		this := float64(f)
		o1 := float64(o)
		if math.IsNaN(this) && math.IsNaN(o1) {
			return true
		}
		ret := this == o1
		if ret && this == 0 {
			ret = math.Signbit(this) == math.Signbit(o1)
		}
		return ret
	case valueInt:
		this := float64(f)
		ret := this == float64(o)
		if ret && this == 0 {
			ret = !math.Signbit(this)
		}
		return ret
	}

	return false
}

func (f valueFloat) Equals(other Value) bool {
	switch o := other.(type) {
	case valueFloat:
		return f == o
	case valueInt:
		return float64(f) == float64(o)
	case valueString, valueBool:
		return float64(f) == o.ToFloat()
	case *Object:
		return f.Equals(o.runtime.toPrimitive(o, hintNumber))
	}

	return false
}

func (f valueFloat) StrictEquals(other Value) bool {
	switch o := other.(type) {
	case valueFloat:
		return f == o
	case valueInt:
		return float64(f) == float64(o)
	}

	return false
}

func (f valueFloat) baseObject(r *Runtime) *Object {
	return r.global.NumberPrototype
}

func (f valueFloat) Export() interface{} {
	return float64(f)
}

func (s valueString) ToInteger() int64 {
	return s.ToNumber().ToInteger()
}

func (s valueString) String() string {
	return string(s)
}

func (s valueString) ToFloat() float64 {
	return s.ToNumber().ToFloat()
}

func (s valueString) ToBoolean() bool {
	return len(s) > 0
}

func (s valueString) ToObject(r *Runtime) *Object {
	return r.newPrimitiveObject(s, r.global.StringPrototype, classString)
}

func (s valueString) ToNumber() Value {
	return stringToNumber(string(s))
}

func (s valueString) SameAs(other Value) bool {
	if other, ok := other.(valueString); ok {
		return s == other
	}
	return false
}

func (s valueString) Equals(other Value) bool {
	switch o := other.(type) {
	case valueString:
		return s == o
	case valueInt, valueFloat:
		return s.ToNumber().Equals(o)
	case valueBool:
		return s.ToNumber().Equals(o.ToNumber())
	case *Object:
		return s.Equals(o.runtime.toPrimitive(o, hintNone))
	}
	return false
}

func (s valueString) StrictEquals(other Value) bool {
	return s.SameAs(other)
}

func (s valueString) baseObject(r *Runtime) *Object {
	return r.global.StringPrototype
}

func (s valueString) Export() interface{} {
	return string(s)
}

// utf16 returns the code units of the string, which is how index and length
// are measured.
func (s valueString) utf16() []uint16 {
	return utf16.Encode([]rune(string(s)))
}

func (s valueString) length() int {
	n := 0
	for _, c := range string(s) {
		if c >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func (o *Object) ToInteger() int64 {
	return o.runtime.toPrimitive(o, hintNumber).ToNumber().ToInteger()
}

func (o *Object) String() string {
	return o.runtime.toPrimitive(o, hintString).String()
}

func (o *Object) ToFloat() float64 {
	return o.runtime.toPrimitive(o, hintNumber).ToFloat()
}

func (o *Object) ToBoolean() bool {
	return true
}

func (o *Object) ToObject(*Runtime) *Object {
	return o
}

func (o *Object) ToNumber() Value {
	return o.runtime.toPrimitive(o, hintNumber).ToNumber()
}

func (o *Object) SameAs(other Value) bool {
	if other, ok := other.(*Object); ok {
		return o == other
	}
	return false
}

func (o *Object) Equals(other Value) bool {
	if other, ok := other.(*Object); ok {
		return o == other
	}

	switch o1 := other.(type) {
	case valueInt, valueFloat, valueString:
		return o.runtime.toPrimitive(o, hintNone).Equals(other)
	case valueBool:
		return o.Equals(o1.ToNumber())
	}

	return false
}

func (o *Object) StrictEquals(other Value) bool {
	if other, ok := other.(*Object); ok {
		return o == other
	}
	return false
}

func (o *Object) baseObject(*Runtime) *Object {
	return o
}

func (o *Object) Export() interface{} {
	return o.self.export()
}

func isWhiteSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0xA0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

// stringToNumber implements ToNumber applied to the String type (ES5 9.3.1).
func stringToNumber(s string) Value {
	s = strings.TrimFunc(s, isWhiteSpace)
	if s == "" {
		return valueInt(0)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		var f float64
		for _, c := range s[2:] {
			var d int
			switch {
			case c >= '0' && c <= '9':
				d = int(c - '0')
			case c >= 'a' && c <= 'f':
				d = int(c-'a') + 10
			case c >= 'A' && c <= 'F':
				d = int(c-'A') + 10
			default:
				return _NaN
			}
			f = f*16 + float64(d)
		}
		return floatToValue(f)
	}
	body := s
	if body[0] == '+' || body[0] == '-' {
		body = body[1:]
	}
	if body == "Infinity" {
		if s[0] == '-' {
			return _negativeInf
		}
		return _positiveInf
	}
	digits := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
		default:
			return _NaN
		}
	}
	if !digits {
		return _NaN
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return _NaN
		}
	}
	return floatToValue(f)
}

// formatNumber implements ToString applied to the Number type (ES5 9.8.1).
func formatNumber(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		return "0"
	}
	var sign string
	if value < 0 {
		sign = "-"
		value = -value
	}
	// shortest round-trip digits in the form d.ddde±x
	e := strconv.FormatFloat(value, 'e', -1, 64)
	mant, exp := e, 0
	if i := strings.IndexByte(e, 'e'); i >= 0 {
		mant = e[:i]
		exp, _ = strconv.Atoi(e[i+1:])
	}
	digits := strings.Replace(mant, ".", "", 1)
	k := len(digits)
	n := exp + 1

	var b strings.Builder
	b.WriteString(sign)
	switch {
	case k <= n && n <= 21:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		b.WriteString(digits[:n])
		b.WriteByte('.')
		b.WriteString(digits[n:])
	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(digits)
	default:
		b.WriteByte(digits[0])
		if k > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if n-1 >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(n - 1))
	}
	return b.String()
}

func toUint32(v Value) uint32 {
	v = v.ToNumber()
	if i, ok := v.(valueInt); ok {
		return uint32(i)
	}
	f := float64(v.(valueFloat))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Mod(math.Trunc(f), 1<<32)))
}

func toInt32(v Value) int32 {
	return int32(toUint32(v))
}
