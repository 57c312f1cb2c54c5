package escore

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestDefaultOptions(t *testing.T) {
	r := New()
	if r.opts.maxCallStackSize != DefaultMaxCallStackSize || r.stack.maxDepth != DefaultMaxCallStackSize {
		t.Fatalf("call stack limit: %d", r.stack.maxDepth)
	}
	if r.opts.maxPrototypeChain != DefaultMaxPrototypeChain {
		t.Fatalf("prototype chain limit: %d", r.opts.maxPrototypeChain)
	}
	if r.opts.parser != nil || r.Logger() == nil {
		t.Fatal("unexpected defaults")
	}
}

func TestOptionsIgnoreNonPositive(t *testing.T) {
	r := New(WithMaxCallStackSize(0), WithMaxPrototypeChain(-1))
	if r.stack.maxDepth != DefaultMaxCallStackSize || r.opts.maxPrototypeChain != DefaultMaxPrototypeChain {
		t.Fatal("non-positive limits must be ignored")
	}
	r = New(WithMaxCallStackSize(7))
	if r.stack.maxDepth != 7 {
		t.Fatalf("maxDepth %d", r.stack.maxDepth)
	}
}

func TestLoggerOption(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r := New(WithLogger(logger))
	if r.Logger() != logger {
		t.Fatal("logger was not installed")
	}

	o := r.NewObject()
	_ = r.Freeze(o)
	if err := o.DefineDataProperty("x", valueInt(1), FLAG_TRUE, FLAG_TRUE, FLAG_TRUE); err == nil {
		t.Fatal("defined a property on a frozen object")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.DebugLevel || entry.Message != "define rejected" || entry.Data["property"] != "x" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}
