package tracer

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetVerbosityClamps(t *testing.T) {
	defer SetVerbosity(1)
	if got := SetVerbosity(0); got != 1 {
		t.Errorf("SetVerbosity(0) = %d, want 1", got)
	}
	if got := SetVerbosity(5); got != 3 {
		t.Errorf("SetVerbosity(5) = %d, want 3", got)
	}
	if got := SetVerbosity(2); got != 2 {
		t.Errorf("SetVerbosity(2) = %d, want 2", got)
	}
}

func TestTraceWithNilLoggerIsANoOp(t *testing.T) {
	called := false
	V(1).Trace(nil, func() (string, logrus.Fields) {
		called = true
		return "never", nil
	})
	if called {
		t.Error("argsFn must not run without a logger")
	}
}

func TestTraceAboveVerbosityIsSkipped(t *testing.T) {
	defer SetVerbosity(1)
	SetVerbosity(1)
	logger := logrus.New()
	// A level-3 message at global verbosity 1 never enqueues; if it did,
	// the sink goroutine would run argsFn concurrently, so only the
	// skip path is observable synchronously.
	V(3).Trace(logger, func() (string, logrus.Fields) {
		t.Error("argsFn must not run for suppressed verbosity")
		return "never", nil
	})
}
