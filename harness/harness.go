/*
Package harness installs the host functions conformance scripts call into: the
test262 ES5 helpers ($ERROR, runTestCase, ES5Harness.registerTest and friends)
and the SpiderMonkey shell helpers (reportCompare, assertEq, printStatus ...).

Failures are reported two ways. AssertEqual records a result and carries on, the
way reportCompare does. AssertError aborts the script with an
*escore.AssertionError, which script catch clauses never intercept.
*/
package harness

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jsconform/escore"
)

// Result is one recorded comparison.
type Result struct {
	Label    string
	Expected string
	Actual   string
	Passed   bool
}

// Harness is bound to a single Runtime.
type Harness struct {
	rt      *escore.Runtime
	out     io.Writer
	logger  logrus.FieldLogger
	results []Result
	skipped string
}

type Option func(*Harness)

// WithOutput sets where $PRINT, printStatus and printBugNumber write.
// The default discards the output.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) {
		h.out = w
	}
}

// WithLogger overrides the logger, which defaults to the runtime's.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Install defines the harness functions on the runtime's global object.
func Install(rt *escore.Runtime, opts ...Option) *Harness {
	h := &Harness{
		rt:     rt,
		out:    io.Discard,
		logger: rt.Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.set("$ERROR", 1, h.fail)
	h.set("$FAIL", 1, h.fail)
	h.set("$PRINT", 1, h.print)
	h.set("print", 1, h.print)
	h.set("reportCompare", 3, h.reportCompare)
	h.set("assertEq", 3, h.assertEq)
	h.set("runTestCase", 1, h.runTestCase)
	h.set("fnExists", 1, h.fnExists)
	h.set("compareArray", 2, h.compareArray)
	h.set("dataPropertyAttributesAreCorrect", 6, h.dataPropertyAttributesAreCorrect)
	h.set("accessorPropertyAttributesAreCorrect", 7, h.accessorPropertyAttributesAreCorrect)
	h.set("enterFunc", 1, h.trace("enter"))
	h.set("exitFunc", 1, h.trace("exit"))
	h.set("printBugNumber", 1, h.printBugNumber)
	h.set("printStatus", 1, h.printStatus)
	h.set("jit", 1, func(escore.FunctionCall) escore.Value {
		return h.rt.ToValue(false)
	})

	es5 := rt.NewObject()
	es5.Set("registerTest", rt.NewFunction("registerTest", 1, h.registerTest))
	rt.Set("ES5Harness", es5)
	return h
}

func (h *Harness) set(name string, length int, f func(escore.FunctionCall) escore.Value) {
	h.rt.Set(name, h.rt.NewFunction(name, length, f))
}

// AssertEqual records whether actual matches expected. Values match when they
// have the same type and compare equal, NaN matching NaN. It never raises.
func (h *Harness) AssertEqual(actual, expected escore.Value, label string) bool {
	passed := escore.TypeOf(actual) == escore.TypeOf(expected) &&
		(actual.StrictEquals(expected) || escore.IsNaN(actual) && escore.IsNaN(expected))
	res := Result{
		Label:    label,
		Expected: display(expected),
		Actual:   display(actual),
		Passed:   passed,
	}
	h.results = append(h.results, res)
	entry := h.logger.WithField("label", label)
	if passed {
		entry.Debug("comparison passed")
	} else {
		entry.WithFields(logrus.Fields{
			"expected": res.Expected,
			"actual":   res.Actual,
		}).Debug("comparison failed")
	}
	return passed
}

// AssertError aborts the running script with an assertion failure. It must be
// called from within a native function invoked by the runtime.
func AssertError(format string, args ...interface{}) {
	panic(escore.NewAssertionError(format, args...))
}

// Results returns every recorded comparison in order.
func (h *Harness) Results() []Result {
	return h.results
}

// Failures returns the failed comparisons.
func (h *Harness) Failures() []Result {
	var failed []Result
	for _, res := range h.results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err turns the first failed comparison into an *escore.AssertionError.
func (h *Harness) Err() error {
	for _, res := range h.results {
		if !res.Passed {
			return escore.NewAssertionError("%s: expected %s, got %s", res.Label, res.Expected, res.Actual)
		}
	}
	return nil
}

// Skipped returns the reason a registered test declined to run because its
// precondition did not hold, or "" when nothing was skipped.
func (h *Harness) Skipped() string {
	return h.skipped
}

func display(v escore.Value) string {
	if s, ok := v.Export().(string); ok && escore.TypeOf(v) == "string" {
		return fmt.Sprintf("%q", s)
	}
	return v.String()
}

// rethrow propagates an error returned by a call back into script code.
func rethrow(err error) {
	if err != nil {
		panic(err)
	}
}

// swallow drops a script error the way an empty catch clause would.
// Assertion failures are not script errors and keep propagating.
func swallow(err error) {
	if _, ok := err.(*escore.AssertionError); ok {
		panic(err)
	}
}

func (h *Harness) call(fn escore.Value, this escore.Value, args ...escore.Value) escore.Value {
	f, ok := escore.AssertFunction(fn)
	if !ok {
		AssertError("%s is not a function", fn.String())
	}
	res, err := f(this, args...)
	rethrow(err)
	return res
}

func (h *Harness) fail(call escore.FunctionCall) escore.Value {
	AssertError("%s", call.Argument(0).String())
	return nil
}

func (h *Harness) print(call escore.FunctionCall) escore.Value {
	args := make([]string, len(call.Arguments))
	for i, a := range call.Arguments {
		args[i] = a.String()
	}
	fmt.Fprintln(h.out, strings.Join(args, " "))
	return escore.Undefined()
}

func (h *Harness) reportCompare(call escore.FunctionCall) escore.Value {
	label := ""
	if d := call.Argument(2); !escore.IsUndefined(d) {
		label = d.String()
	}
	h.AssertEqual(call.Argument(1), call.Argument(0), label)
	return escore.Undefined()
}

// assertEq compares with SameValue and raises on mismatch.
func (h *Harness) assertEq(call escore.FunctionCall) escore.Value {
	actual, expected := call.Argument(0), call.Argument(1)
	if !actual.SameAs(expected) {
		msg := fmt.Sprintf("Assertion failed: got %s, expected %s", display(actual), display(expected))
		if m := call.Argument(2); !escore.IsUndefined(m) {
			msg += ": " + m.String()
		}
		AssertError("%s", msg)
	}
	return escore.Undefined()
}

func (h *Harness) runTestCase(call escore.FunctionCall) escore.Value {
	res := h.call(call.Argument(0), escore.Undefined())
	if !res.StrictEquals(h.rt.ToValue(true)) {
		AssertError("Test case returned non-true value!")
	}
	return escore.Undefined()
}

func (h *Harness) registerTest(call escore.FunctionCall) escore.Value {
	desc := call.Argument(0).ToObject(h.rt)
	id := ""
	if v := desc.Get("id"); v != nil {
		id = v.String()
	}
	if pre := desc.Get("precondition"); pre != nil && !escore.IsUndefined(pre) {
		if !h.call(pre, desc).ToBoolean() {
			h.skipped = "precondition of " + id + " not met"
			h.logger.WithField("test", id).Info("precondition not met")
			return escore.Undefined()
		}
	}
	test := desc.Get("test")
	if test == nil {
		AssertError("%s: registered test has no test function", id)
	}
	if res := h.call(test, desc); !res.StrictEquals(h.rt.ToValue(true)) {
		description := ""
		if v := desc.Get("description"); v != nil {
			description = v.String()
		}
		AssertError("%s: %s", id, description)
	}
	return escore.Undefined()
}

func (h *Harness) fnExists(call escore.FunctionCall) escore.Value {
	for _, a := range call.Arguments {
		if escore.TypeOf(a) != "function" {
			return h.rt.ToValue(false)
		}
	}
	return h.rt.ToValue(true)
}

func (h *Harness) compareArray(call escore.FunctionCall) escore.Value {
	a := call.Argument(0).ToObject(h.rt)
	b := call.Argument(1).ToObject(h.rt)
	l := lengthOf(a)
	if l != lengthOf(b) {
		return h.rt.ToValue(false)
	}
	for _, key := range arrayKeys(l, a, b) {
		if !valueOf(a.Get(key)).SameAs(valueOf(b.Get(key))) {
			return h.rt.ToValue(false)
		}
	}
	return h.rt.ToValue(true)
}

// maxDenseCompare is the length above which compareArray only visits the
// indices present on either operand.
const maxDenseCompare = 1 << 20

func arrayKeys(l int64, objs ...*escore.Object) []string {
	if l <= maxDenseCompare {
		keys := make([]string, 0, l)
		for i := int64(0); i < l; i++ {
			keys = append(keys, strconv.FormatInt(i, 10))
		}
		return keys
	}
	seen := make(map[string]struct{})
	var keys []string
	for _, o := range objs {
		for _, name := range o.GetOwnPropertyNames() {
			idx, err := strconv.ParseUint(name, 10, 32)
			if err != nil || int64(idx) >= l || strconv.FormatUint(idx, 10) != name {
				continue
			}
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				keys = append(keys, name)
			}
		}
	}
	return keys
}

func lengthOf(o *escore.Object) int64 {
	return valueOf(o.Get("length")).ToInteger()
}

func valueOf(v escore.Value) escore.Value {
	if v == nil {
		return escore.Undefined()
	}
	return v
}

func sameOrBothNaN(a, b escore.Value) bool {
	if a.StrictEquals(b) {
		return true
	}
	return escore.TypeOf(a) == "number" && escore.TypeOf(b) == "number" &&
		math.IsNaN(a.ToFloat()) && math.IsNaN(b.ToFloat())
}

// enumerated reports whether name shows up among the own enumerable keys.
func enumerated(o *escore.Object, name string) bool {
	for _, k := range o.Keys() {
		if k == name {
			return true
		}
	}
	return false
}

// deletable deletes name and reports whether it is gone afterwards.
func deletable(o *escore.Object, name string) bool {
	swallow(o.Delete(name))
	_, exists := o.GetOwnPropertyDescriptor(name)
	return !exists
}

// dataPropertyAttributesAreCorrect probes the attributes by behavior: it tries
// to overwrite, enumerate and delete the property. The property may be gone
// afterwards.
func (h *Harness) dataPropertyAttributesAreCorrect(call escore.FunctionCall) escore.Value {
	obj := call.Argument(0).ToObject(h.rt)
	name := call.Argument(1).String()
	value := call.Argument(2)
	writable := call.Argument(3).ToBoolean()
	enumerable := call.Argument(4).ToBoolean()
	configurable := call.Argument(5).ToBoolean()

	correct := sameOrBothNaN(valueOf(obj.Get(name)), value)

	newValue := "OldValue"
	if current := valueOf(obj.Get(name)); escore.TypeOf(current) == "string" && current.String() == "oldValue" {
		newValue = "newValue"
	}
	swallow(obj.Set(name, newValue))
	overwritten := !sameOrBothNaN(valueOf(obj.Get(name)), value)
	if overwritten != writable {
		correct = false
	}
	if enumerated(obj, name) != enumerable {
		correct = false
	}
	if deletable(obj, name) != configurable {
		correct = false
	}
	return h.rt.ToValue(correct)
}

// accessorPropertyAttributesAreCorrect checks the getter result, runs the
// setter and verifies it through setVerifyHelpProp, then probes enumeration and
// deletion.
func (h *Harness) accessorPropertyAttributesAreCorrect(call escore.FunctionCall) escore.Value {
	obj := call.Argument(0).ToObject(h.rt)
	name := call.Argument(1).String()
	get, set := call.Argument(2), call.Argument(3)
	verifyProp := call.Argument(4).String()
	enumerable := call.Argument(5).ToBoolean()
	configurable := call.Argument(6).ToBoolean()

	correct := true
	expected := escore.Undefined()
	if !escore.IsUndefined(get) {
		expected = h.call(get, escore.Undefined())
	}
	if !valueOf(obj.Get(name)).StrictEquals(expected) {
		correct = false
	}

	desc, _ := obj.GetOwnPropertyDescriptor(name)
	setter := valueOf(desc.Setter)
	if escore.IsUndefined(set) {
		if !escore.IsUndefined(setter) {
			correct = false
		}
	} else {
		if !setter.StrictEquals(set) {
			correct = false
		}
		swallow(obj.Set(name, "toBeSetValue"))
		if v := valueOf(obj.Get(verifyProp)); escore.TypeOf(v) != "string" || v.String() != "toBeSetValue" {
			correct = false
		}
	}

	if enumerated(obj, name) != enumerable {
		correct = false
	}
	if deletable(obj, name) != configurable {
		correct = false
	}
	return h.rt.ToValue(correct)
}

func (h *Harness) trace(event string) func(escore.FunctionCall) escore.Value {
	return func(call escore.FunctionCall) escore.Value {
		h.logger.WithField("function", call.Argument(0).String()).Debug(event)
		return escore.Undefined()
	}
}

func (h *Harness) printBugNumber(call escore.FunctionCall) escore.Value {
	fmt.Fprintf(h.out, "BUGNUMBER: %s\n", call.Argument(0).String())
	return escore.Undefined()
}

func (h *Harness) printStatus(call escore.FunctionCall) escore.Value {
	for _, line := range strings.Split(call.Argument(0).String(), "\n") {
		fmt.Fprintf(h.out, "STATUS: %s\n", line)
	}
	return escore.Undefined()
}
