package harness

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsconform/escore"
	"github.com/jsconform/escore/ast"
)

func newHarness(t *testing.T) (*escore.Runtime, *Harness, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	rt := escore.New()
	return rt, Install(rt, WithOutput(&out)), &out
}

func callGlobal(t *testing.T, rt *escore.Runtime, name string, args ...interface{}) (escore.Value, error) {
	t.Helper()
	fn, ok := escore.AssertFunction(rt.Get(name))
	require.True(t, ok, "%s is not installed", name)
	values := make([]escore.Value, len(args))
	for i, a := range args {
		values[i] = rt.ToValue(a)
	}
	return fn(escore.Undefined(), values...)
}

func TestReportCompareRecords(t *testing.T) {
	rt, h, _ := newHarness(t)

	_, err := callGlobal(t, rt, "reportCompare", "", "", "empty strings")
	require.NoError(t, err)
	_, err = callGlobal(t, rt, "reportCompare", 1, "1", "type mismatch")
	require.NoError(t, err, "reportCompare must not raise")
	_, err = callGlobal(t, rt, "reportCompare", escore.NaN(), escore.NaN(), "nan")
	require.NoError(t, err)

	results := h.Results()
	require.Len(t, results, 3)
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.Equal(t, "1", results[1].Expected)
	assert.Equal(t, `"1"`, results[1].Actual)
	assert.True(t, results[2].Passed)

	assert.Len(t, h.Failures(), 1)
	var ae *escore.AssertionError
	require.True(t, errors.As(h.Err(), &ae))
	assert.Equal(t, `type mismatch: expected 1, got "1"`, ae.Message)
}

func TestAssertEqualNoFailures(t *testing.T) {
	rt, h, _ := newHarness(t)
	assert.True(t, h.AssertEqual(rt.ToValue("a"), rt.ToValue("a"), "same"))
	assert.NoError(t, h.Err())
}

func TestErrorRaisesAssertion(t *testing.T) {
	rt, _, _ := newHarness(t)
	_, err := callGlobal(t, rt, "$ERROR", "#1: boom")
	var ae *escore.AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "#1: boom", ae.Message)
	kind, ok := escore.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, escore.ErrorKindAssertion, kind)
}

func TestAssertionBypassesCatch(t *testing.T) {
	rt, _, _ := newHarness(t)
	// try { $ERROR("boom") } catch (e) { caught = true }
	prg := &ast.Program{
		Name: "bypass.js",
		Body: []ast.Statement{
			&ast.TryStatement{
				Body: &ast.BlockStatement{List: []ast.Statement{
					&ast.ExpressionStatement{Expression: &ast.CallExpression{
						Callee:       &ast.Identifier{Name: "$ERROR"},
						ArgumentList: []ast.Expression{&ast.StringLiteral{Value: "boom"}},
					}},
				}},
				Catch: &ast.CatchStatement{
					Parameter: "e",
					Body: &ast.BlockStatement{List: []ast.Statement{
						&ast.ExpressionStatement{Expression: &ast.AssignExpression{
							Operator: "=",
							Left:     &ast.Identifier{Name: "caught"},
							Right:    &ast.BooleanLiteral{Value: true},
						}},
					}},
				},
			},
		},
	}
	_, err := rt.RunProgram(prg)
	var ae *escore.AssertionError
	require.True(t, errors.As(err, &ae), "got %v", err)
	assert.Nil(t, rt.Get("caught"))
}

func TestAssertEq(t *testing.T) {
	rt, _, _ := newHarness(t)
	_, err := callGlobal(t, rt, "assertEq", 1, 1)
	assert.NoError(t, err)

	_, err = callGlobal(t, rt, "assertEq", 0, escore.NaN(), "zero")
	require.Error(t, err)
	assert.Equal(t, "assertion failure: Assertion failed: got 0, expected NaN: zero", err.Error())
}

func TestRunTestCase(t *testing.T) {
	rt, _, _ := newHarness(t)
	yes := rt.NewFunction("yes", 0, func(escore.FunctionCall) escore.Value { return rt.ToValue(true) })
	no := rt.NewFunction("no", 0, func(escore.FunctionCall) escore.Value { return rt.ToValue(1) })

	_, err := callGlobal(t, rt, "runTestCase", yes)
	assert.NoError(t, err)
	_, err = callGlobal(t, rt, "runTestCase", no)
	assert.EqualError(t, err, "assertion failure: Test case returned non-true value!")
}

func TestRunTestCasePropagatesScriptErrors(t *testing.T) {
	rt, _, _ := newHarness(t)
	frozen := rt.NewObject()
	require.NoError(t, rt.Freeze(frozen))
	defineProperty, ok := escore.AssertFunction(rt.Get("Object").(*escore.Object).Get("defineProperty"))
	require.True(t, ok)

	thrower := rt.NewFunction("thrower", 0, func(escore.FunctionCall) escore.Value {
		v, err := defineProperty(escore.Undefined(), frozen, rt.ToValue("x"), rt.NewObject())
		rethrow(err)
		return v
	})
	_, err := callGlobal(t, rt, "runTestCase", thrower)
	var ex *escore.Exception
	require.True(t, errors.As(err, &ex), "got %v", err)
	assert.Equal(t, escore.ErrorKindTypeError, ex.Kind())
	assert.Equal(t, "TypeError: cannot redefine property", ex.Message())
}

func TestRegisterTest(t *testing.T) {
	rt, h, _ := newHarness(t)
	desc := rt.NewObject()
	require.NoError(t, desc.Set("id", "15.2.3.6-4-1"))
	require.NoError(t, desc.Set("description", "fails"))
	require.NoError(t, desc.Set("test", rt.NewFunction("testcase", 0, func(escore.FunctionCall) escore.Value {
		return rt.ToValue(false)
	})))

	register := func(o *escore.Object) error {
		es5 := rt.Get("ES5Harness").(*escore.Object)
		fn, ok := escore.AssertFunction(es5.Get("registerTest"))
		require.True(t, ok)
		_, err := fn(es5, o)
		return err
	}

	assert.EqualError(t, register(desc), "assertion failure: 15.2.3.6-4-1: fails")

	require.NoError(t, desc.Set("precondition", rt.NewFunction("prereq", 0, func(escore.FunctionCall) escore.Value {
		return rt.ToValue(false)
	})))
	assert.NoError(t, register(desc))
	assert.Equal(t, "precondition of 15.2.3.6-4-1 not met", h.Skipped())
}

func TestFnExistsAndCompareArray(t *testing.T) {
	rt, _, _ := newHarness(t)
	v, err := callGlobal(t, rt, "fnExists", rt.Get("Object"), rt.Get("eval"))
	require.NoError(t, err)
	assert.True(t, v.ToBoolean())
	v, err = callGlobal(t, rt, "fnExists", rt.Get("Object"), 1)
	require.NoError(t, err)
	assert.False(t, v.ToBoolean())

	v, err = callGlobal(t, rt, "compareArray", rt.NewArray(1, "a", escore.NaN()), rt.NewArray(1, "a", escore.NaN()))
	require.NoError(t, err)
	assert.True(t, v.ToBoolean())
	v, err = callGlobal(t, rt, "compareArray", rt.NewArray(1, 2), rt.NewArray(1))
	require.NoError(t, err)
	assert.False(t, v.ToBoolean())
}

func TestCompareArrayHugeLength(t *testing.T) {
	rt, _, _ := newHarness(t)
	huge := func(items ...interface{}) *escore.Object {
		a := rt.NewArray(items...)
		require.NoError(t, a.Set("length", 4294967295))
		return a
	}

	v, err := callGlobal(t, rt, "compareArray", huge("x"), huge("x"))
	require.NoError(t, err)
	assert.True(t, v.ToBoolean())

	b := huge()
	require.NoError(t, b.Set("4294967294", "x"))
	v, err = callGlobal(t, rt, "compareArray", huge(), b)
	require.NoError(t, err)
	assert.False(t, v.ToBoolean())
}

func TestDataPropertyAttributesAreCorrect(t *testing.T) {
	rt, _, _ := newHarness(t)
	obj := rt.NewObject()
	require.NoError(t, obj.DefineDataProperty("a", rt.ToValue(10), escore.FLAG_FALSE, escore.FLAG_FALSE, escore.FLAG_TRUE))

	v, err := callGlobal(t, rt, "dataPropertyAttributesAreCorrect", obj, "a", 10, false, true, false)
	require.NoError(t, err)
	assert.True(t, v.ToBoolean())

	v, err = callGlobal(t, rt, "dataPropertyAttributesAreCorrect", obj, "a", 10, true, true, false)
	require.NoError(t, err)
	assert.False(t, v.ToBoolean(), "the property is not writable")

	require.NoError(t, obj.DefineDataProperty("b", rt.ToValue(1), escore.FLAG_TRUE, escore.FLAG_TRUE, escore.FLAG_FALSE))
	v, err = callGlobal(t, rt, "dataPropertyAttributesAreCorrect", obj, "b", 1, true, false, true)
	require.NoError(t, err)
	assert.True(t, v.ToBoolean())
	_, exists := obj.GetOwnPropertyDescriptor("b")
	assert.False(t, exists, "the probe deletes configurable properties")
}

func TestAccessorPropertyAttributesAreCorrect(t *testing.T) {
	rt, _, _ := newHarness(t)
	obj := rt.NewObject()
	require.NoError(t, obj.Set("verifySetFunc", "data"))
	getter := rt.NewFunction("get", 0, func(escore.FunctionCall) escore.Value {
		return obj.Get("verifySetFunc")
	})
	setter := rt.NewFunction("set", 1, func(call escore.FunctionCall) escore.Value {
		require.NoError(t, obj.Set("verifySetFunc", call.Argument(0)))
		return escore.Undefined()
	})
	require.NoError(t, obj.DefineAccessorProperty("0", getter, setter, escore.FLAG_FALSE, escore.FLAG_TRUE))

	v, err := callGlobal(t, rt, "accessorPropertyAttributesAreCorrect", obj, "0", getter, setter, "verifySetFunc", true, false)
	require.NoError(t, err)
	assert.True(t, v.ToBoolean())
	assert.Equal(t, "toBeSetValue", obj.Get("verifySetFunc").String())
}

func TestPrintHelpers(t *testing.T) {
	rt, _, out := newHarness(t)
	_, err := callGlobal(t, rt, "printBugNumber", 477158)
	require.NoError(t, err)
	_, err = callGlobal(t, rt, "printStatus", "line one\nline two")
	require.NoError(t, err)
	_, err = callGlobal(t, rt, "$PRINT", "done", 1)
	require.NoError(t, err)
	_, err = callGlobal(t, rt, "enterFunc", "test")
	require.NoError(t, err)
	v, err := callGlobal(t, rt, "jit", true)
	require.NoError(t, err)
	assert.False(t, v.ToBoolean())

	assert.Equal(t, "BUGNUMBER: 477158\nSTATUS: line one\nSTATUS: line two\ndone 1\n", out.String())
}
