package plan

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/badwolf-labs/jsonql/compile"
	"github.com/badwolf-labs/jsonql/task"
)

// ErrNonFiniteLiteral is a compile-time failure raised here rather than
// in package compile because the scheduler is what pre-fills literal
// slots, and therefore the first place a non-finite float literal is
// actually evaluated.
var ErrNonFiniteLiteral = goerrors.NewKind("non-finite float literal: %v")

// SelectPlan is a scheduled, ready-to-execute task graph: the topological
// execution order (filtered to computing actions), a value buffer with
// one slot per node index pre-filled for every Literal node, and the
// projection/predicate bookkeeping carried over from BuiltSelect.
type SelectPlan struct {
	// ID tells one compiled plan's trace lines apart from another's when
	// several plans run through the same logger.
	ID          uuid.UUID
	Graph       *task.Graph
	Projections []task.NodeIndex
	Where       *task.NodeIndex
	Table       string

	buffer    []interface{}
	execOrder []task.NodeIndex
}

// Type identifies this plan's statement shape, matching the teacher's
// Executor.Type() convention.
func (p *SelectPlan) Type() string { return "SELECT" }

// String renders a readable plan dump for diagnostics and the CLI driver.
func (p *SelectPlan) String() string {
	s := fmt.Sprintf("SelectPlan{id=%s table=%q}\n", p.ID, p.Table)
	s += p.Graph.String()
	return s
}

// Schedule topologically sorts g, sizes and pre-fills the value buffer
// for every Literal node, and builds the execution list (the topo order
// filtered to computing actions). A cycle or a non-finite float literal
// is a compile error — both are things only a fully populated graph can
// detect.
func Schedule(g *task.Graph, built *compile.BuiltSelect) (*SelectPlan, error) {
	order, err := g.Toposort()
	if err != nil {
		return nil, err
	}

	buffer := make([]interface{}, g.NumNodes())
	execOrder := make([]task.NodeIndex, 0, len(order))
	for _, idx := range order {
		node := g.Node(idx)
		switch node.Action.Kind {
		case task.KindLiteral:
			v, err := literalValue(node.Action.Literal)
			if err != nil {
				return nil, err
			}
			buffer[idx] = v
		default:
			if node.Action.IsComputing() {
				execOrder = append(execOrder, idx)
			}
		}
	}

	return &SelectPlan{
		ID:          uuid.New(),
		Graph:       g,
		Projections: built.Projections,
		Where:       built.Where,
		Table:       built.Table,
		buffer:      buffer,
		execOrder:   execOrder,
	}, nil
}

func literalValue(lit task.Literal) (interface{}, error) {
	switch lit.Kind {
	case task.LiteralInteger:
		return task.FromInt(lit.Integer).ToJSON(), nil
	case task.LiteralFloat:
		if math.IsInf(lit.Float, 0) || math.IsNaN(lit.Float) {
			return nil, ErrNonFiniteLiteral.New(lit.Float)
		}
		return task.FromFloat(lit.Float).ToJSON(), nil
	default:
		return lit.String, nil
	}
}
