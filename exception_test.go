package escore

import (
	"errors"
	"testing"
)

func TestErrorKindNames(t *testing.T) {
	for _, k := range []ErrorKind{ErrorKindError, ErrorKindTypeError, ErrorKindRangeError, ErrorKindReferenceError, ErrorKindSyntaxError, ErrorKindAssertion} {
		if ParseErrorKind(k.String()) != k {
			t.Fatalf("round trip of %s", k)
		}
	}
	if ParseErrorKind("EvalError") != ErrorKindError {
		t.Fatal("unknown constructors are plain errors")
	}
}

func TestExceptionClassify(t *testing.T) {
	r := New()
	for _, tc := range []struct {
		ctor *Object
		kind ErrorKind
	}{
		{r.global.Error, ErrorKindError},
		{r.global.TypeError, ErrorKindTypeError},
		{r.global.RangeError, ErrorKindRangeError},
		{r.global.ReferenceError, ErrorKindReferenceError},
		{r.global.SyntaxError, ErrorKindSyntaxError},
	} {
		ex := r.newException(r.NewError(tc.ctor, "msg %d", 1))
		if ex.Kind() != tc.kind {
			t.Fatalf("%s: %s", tc.kind, ex.Kind())
		}
		if ex.Message() != tc.kind.String()+": msg 1" {
			t.Fatalf("message: %q", ex.Message())
		}
	}

	// Anything thrown that is not an error object.
	if ex := r.newException(newStringValue("boom")); ex.Kind() != ErrorKindError || ex.Message() != "boom" {
		t.Fatalf("%s %q", ex.Kind(), ex.Message())
	}
	if ex := r.newException(r.NewObject()); ex.Message() != "[object Object]" {
		t.Fatalf("%q", ex.Message())
	}
}

func TestExceptionMessageSkipsAccessors(t *testing.T) {
	r := New()
	o := r.NewObject()
	called := false
	getter := r.NewFunction("", 0, func(FunctionCall) Value {
		called = true
		return newStringValue("x")
	})
	if err := o.DefineAccessorProperty("message", getter, nil, FLAG_TRUE, FLAG_TRUE); err != nil {
		t.Fatal(err)
	}
	if err := o.Set("name", ""); err != nil {
		t.Fatal(err)
	}
	ex := r.newException(o)
	if ex.Message() != "" || called {
		t.Fatalf("%q, getter called: %v", ex.Message(), called)
	}
}

func TestExceptionStack(t *testing.T) {
	ex := &Exception{
		val:   newStringValue("boom"),
		stack: []StackFrame{{FuncName: "inner"}, {FuncName: "outer"}, {}},
	}
	if ex.Error() != "boom at inner" {
		t.Fatalf("Error: %q", ex.Error())
	}
	if ex.String() != "boom\n\tat inner\n\tat outer\n\tat <anonymous>\n" {
		t.Fatalf("String: %q", ex.String())
	}
	var nilEx *Exception
	if nilEx.Error() != "<nil>" {
		t.Fatal("nil exception")
	}
}

func TestKindOf(t *testing.T) {
	r := New()
	err := r.try(func() {
		panic(NewAssertionError("%s failed", "x"))
	})
	var ae *AssertionError
	if !errors.As(err, &ae) || ae.Message != "x failed" || err.Error() != "assertion failure: x failed" {
		t.Fatalf("unexpected error: %v", err)
	}
	if k, ok := KindOf(err); !ok || k != ErrorKindAssertion {
		t.Fatalf("KindOf: %s %v", k, ok)
	}

	err = r.try(func() {
		panic(r.rangeError("too far"))
	})
	if k, ok := KindOf(err); !ok || k != ErrorKindRangeError {
		t.Fatalf("KindOf: %s %v", k, ok)
	}
	if _, ok := KindOf(errors.New("io")); ok {
		t.Fatal("foreign errors have no kind")
	}
}

func TestTryRepanicsForeignValues(t *testing.T) {
	r := New()
	defer func() {
		if x := recover(); x != "foreign" {
			t.Fatalf("recovered %v", x)
		}
	}()
	_ = r.try(func() {
		panic("foreign")
	})
}
