// Package tracer contains the implementation of basic execution tracing
// tools for the compiler and evaluator. It is a direct adaptation of the
// teacher's channel-buffered async tracer: callers still describe a
// message lazily behind a verbosity gate, but the sink is a structured
// github.com/sirupsen/logrus logger instead of a raw io.Writer, so traced
// events carry fields (such as phase, table and plan_id) a log aggregator
// can filter on.
package tracer

import (
	"time"

	"github.com/sirupsen/logrus"
)

// event encapsulates a single tracing event queued for the sink goroutine.
type event struct {
	logger *logrus.Logger
	t      time.Time
	argsFn func() (string, logrus.Fields)
}

// MessageTracer encapsulates the intrinsic verbosity of a given tracing
// message.
type MessageTracer struct {
	verbosity int
}

// globalVerbosity is the current tracer's verbosity level: 1 means
// minimum (only crucial messages print), 3 means maximum (everything
// prints).
var globalVerbosity int

// events is the channel every traced message is queued on; a single
// goroutine drains it and writes to the message's logger, keeping the
// hot compile/evaluate path from blocking on log I/O.
var events chan *event

func init() {
	globalVerbosity = 1
	events = make(chan *event, 10000)

	go func() {
		for e := range events {
			msg, fields := e.argsFn()
			e.logger.WithFields(fields).WithTime(e.t).Info(msg)
		}
	}()
}

// SetVerbosity sets the global verbosity, clamped to [1, 3], and returns
// the value actually set.
func SetVerbosity(verbosity int) int {
	globalVerbosity = clamp(verbosity)
	return globalVerbosity
}

// V returns a MessageTracer at the given verbosity, clamped to [1, 3].
// Level 1 messages always print; level 3 messages print only at maximum
// global verbosity.
func V(verbosity int) MessageTracer {
	return MessageTracer{clamp(verbosity)}
}

func clamp(v int) int {
	if v < 1 {
		return 1
	}
	if v > 3 {
		return 3
	}
	return v
}

func (t MessageTracer) isTraceable() bool {
	return t.verbosity <= globalVerbosity
}

// Trace queues a message for logger if the tracer's verbosity is active.
// argsFn is called lazily, off the hot path, only once the event reaches
// the sink goroutine — mirrors the teacher's lazy-Arguments trick for
// avoiding allocation when tracing is off.
func (t MessageTracer) Trace(logger *logrus.Logger, argsFn func() (string, logrus.Fields)) {
	if logger == nil || !t.isTraceable() {
		return
	}
	events <- &event{logger: logger, t: time.Now(), argsFn: argsFn}
}
