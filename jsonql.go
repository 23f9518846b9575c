// Package jsonql is the top-level entry point: ParseAndExecute wires the
// parser, compiler and evaluator together for a source string evaluated
// against one JSON input document, matching spec.md section 6's
// single-function external interface.
package jsonql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/badwolf-labs/jsonql/ast"
	"github.com/badwolf-labs/jsonql/compile"
	"github.com/badwolf-labs/jsonql/parser"
	"github.com/badwolf-labs/jsonql/plan"
	"github.com/badwolf-labs/jsonql/tracer"
)

// traceLogger is the sink for compile/execute phase traces. It is nil by
// default — tracing is opt-in, set once by the embedding driver before any
// query runs.
var traceLogger *logrus.Logger

// SetTraceLogger installs the logger compile and execution phases trace to.
func SetTraceLogger(l *logrus.Logger) { traceLogger = l }

// Plan is the common shape every compiled statement satisfies, matching
// the teacher's Executor interface (Type/String/Execute).
type Plan interface {
	Type() string
	String() string
	Execute(ctx context.Context, input interface{}) (*plan.Result, error)
}

// StatementResult is one statement's outcome: OK-with-result, or
// Err-with-runtime-message. Type and Plan are carried through for the CLI
// driver's diagnostic printout.
type StatementResult struct {
	Type   string
	Plan   string
	Result *plan.Result
	Err    error
}

// Compile turns one parsed statement into a ready-to-execute Plan,
// running the full build -> dealias -> populate-context -> schedule
// pipeline. A SELECT compiles to a single *plan.SelectPlan; a FOREACH
// compiles its synthesized outer/inner selects and wraps both in a
// *plan.ForeachPlan.
func Compile(stmt ast.Statement) (Plan, error) {
	switch s := stmt.(type) {
	case *ast.SelectStatement:
		return compileSelect(s)
	case *ast.ForeachStatement:
		return compileForeach(s)
	default:
		return nil, fmt.Errorf("jsonql: unknown statement type %T", stmt)
	}
}

func compileSelect(s *ast.SelectStatement) (Plan, error) {
	p, err := compileSelectPlan(s, compile.RootAlias, "")
	if err != nil {
		return nil, err
	}
	return p, nil
}

// compileSelectPlan runs the build -> dealias -> adopt-aliases ->
// populate-context -> schedule pipeline for one synthesized or parsed
// SELECT, tracing each compile phase at verbosity 3 and the scheduled
// plan at verbosity 2.
func compileSelectPlan(s *ast.SelectStatement, rootAlias, reserved string) (*plan.SelectPlan, error) {
	g, built, err := compile.BuildSelect(s)
	if err != nil {
		return nil, err
	}
	tracePhase("build", built.Table)
	if err := compile.Dealias(g, rootAlias, reserved); err != nil {
		return nil, err
	}
	compile.AdoptProjectionAliases(g, built.Projections)
	tracePhase("dealias", built.Table)
	if err := compile.PopulateContext(g); err != nil {
		return nil, err
	}
	tracePhase("populate-context", built.Table)
	p, err := plan.Schedule(g, built)
	if err != nil {
		return nil, err
	}
	tracer.V(2).Trace(traceLogger, func() (string, logrus.Fields) {
		return "plan scheduled", logrus.Fields{"plan_id": p.ID.String(), "table": p.Table, "phase": "schedule"}
	})
	return p, nil
}

func tracePhase(phase, table string) {
	tracer.V(3).Trace(traceLogger, func() (string, logrus.Fields) {
		return "compile phase done", logrus.Fields{"phase": phase, "table": table}
	})
}

func compileForeach(s *ast.ForeachStatement) (Plan, error) {
	outerStmt, innerStmt := compile.ForeachSelects(s)

	outerPlan, err := compileSelectPlan(outerStmt, compile.RootAlias, "")
	if err != nil {
		return nil, err
	}
	innerPlan, err := compileSelectPlan(innerStmt, s.LoopAlias, s.LoopAlias)
	if err != nil {
		return nil, err
	}
	return &plan.ForeachPlan{Outer: outerPlan, Inner: innerPlan}, nil
}

// ParseAndExecute parses source into an ordered list of statements,
// compiles each in turn, and evaluates it against input. A tokenizer,
// parser or compile error is returned as the outer error and short-
// circuits every remaining statement; runtime errors are captured
// per-statement instead.
func ParseAndExecute(ctx context.Context, source string, input json.RawMessage) ([]StatementResult, error) {
	stmts, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	doc, err := decodeDocument(input)
	if err != nil {
		return nil, err
	}

	results := make([]StatementResult, 0, len(stmts))
	for _, stmt := range stmts {
		p, err := Compile(stmt)
		if err != nil {
			return nil, err
		}

		sr := StatementResult{Type: p.Type(), Plan: p.String()}
		res, err := p.Execute(ctx, doc)
		if err != nil {
			sr.Err = err
		} else {
			sr.Result = res
		}
		results = append(results, sr)
	}
	return results, nil
}

// decodeDocument decodes input with Decoder.UseNumber() so JSON numbers
// keep their unsigned/signed/float distinctness instead of collapsing to
// float64 — the one piece of domain logic this repo deliberately leaves
// on the standard library (see DESIGN.md).
func decodeDocument(input json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, pkgerrors.Wrap(err, "decoding input document")
	}
	return v, nil
}
