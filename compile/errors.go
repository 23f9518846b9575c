// Package compile turns a parsed statement into a populated task.Graph:
// the graph builder, the alias resolver ("dealias"), and the context
// populator. Scheduling and evaluation live in package plan.
package compile

import goerrors "gopkg.in/src-d/go-errors.v1"

// Error kinds, one per compile-time taxonomy entry in spec.md section 7.
var (
	ErrUnsupportedConstruct = goerrors.NewKind("unsupported construct: %s")
	ErrReservedAlias        = goerrors.NewKind("reserved alias: %q may not be used as a user alias")
	ErrUnresolvedReference  = goerrors.NewKind("Invalid accesses in query nodes: %s")
	ErrArityMismatch        = goerrors.NewKind("%s")
)
