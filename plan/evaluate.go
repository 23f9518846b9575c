package plan

import (
	"context"
	"encoding/json"
	"fmt"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/badwolf-labs/jsonql/task"
)

// Error kinds for the runtime taxonomy entries of spec.md section 7.
var (
	ErrTypeMismatch   = goerrors.NewKind("%s")
	ErrNotImplemented = goerrors.NewKind("%s not implemented")
)

// Execute runs p against input: fills the Root slot, runs every task in
// execution order, then harvests the projection and predicate slots into
// a Simple result. Execution mutates p's value buffer, so p must not be
// re-entered concurrently — the same restriction spec.md section 5
// places on every compiled plan.
func (p *SelectPlan) Execute(ctx context.Context, input interface{}) (*Result, error) {
	p.buffer[task.RootIndex] = input

	for _, idx := range p.execOrder {
		node := p.Graph.Node(idx)
		value, err := p.evalNode(node)
		if err != nil {
			return nil, err
		}
		p.buffer[idx] = value
	}

	result := &Result{Kind: KindSimple}
	for _, projIdx := range p.Projections {
		result.Pairs = append(result.Pairs, Pair{
			Alias: p.Graph.Node(projIdx).Alias,
			Value: p.buffer[projIdx],
		})
	}
	if p.Where != nil {
		result.HasCond = true
		result.Cond = p.buffer[*p.Where]
	}
	return result, nil
}

func (p *SelectPlan) evalNode(node *task.QueryTask) (interface{}, error) {
	switch node.Action.Kind {
	case task.KindAccessor:
		parent := p.buffer[node.Context.Parents[0]]
		return descend(parent, node.Action.Path), nil

	case task.KindLink:
		return p.buffer[node.Context.Parents[0]], nil

	case task.KindUnaryOp:
		x := p.buffer[node.Context.Parents[0]]
		return evalUnary(node.Action.Unary, x)

	case task.KindBinaryOp:
		left := p.buffer[node.Context.Parents[0]]
		right := p.buffer[node.Context.Parents[1]]
		return evalBinary(node.Action.Binary, left, right)

	case task.KindFunction:
		return nil, ErrNotImplemented.New("function calls")

	default:
		return nil, ErrNotImplemented.New(fmt.Sprintf("action %s", node.Action.Kind))
	}
}

// descend walks path through parent by string keys. A missing key, or a
// non-object receiver at any step, yields JSON null rather than an error —
// spec.md documents this as intentional relaxed-access semantics, not a
// bug to fix.
func descend(parent interface{}, path []string) interface{} {
	cur := parent
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		v, ok := m[key]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func evalUnary(op task.UnaryOp, x interface{}) (interface{}, error) {
	switch op {
	case task.UnaryPlus:
		return x, nil

	case task.UnaryMinus:
		n, ok := asNumber(x)
		if !ok {
			return nil, ErrTypeMismatch.New(fmt.Sprintf("unary minus not implemented for type %T", x))
		}
		return n.Negate().ToJSON(), nil

	case task.UnaryNot:
		b, ok := x.(bool)
		if !ok {
			return nil, ErrTypeMismatch.New("Not operator requires boolean")
		}
		return !b, nil

	default:
		return nil, ErrNotImplemented.New(fmt.Sprintf("unary operator %s", op))
	}
}

func evalBinary(op task.BinaryOp, left, right interface{}) (interface{}, error) {
	// Mul/Div are representable in the grammar but kept reserved, matching
	// the source system this was distilled from: only Add/Sub and the
	// five comparisons are actually dispatched (see DESIGN.md).
	if op == task.BinaryMul || op == task.BinaryDiv {
		return nil, ErrNotImplemented.New(fmt.Sprintf("operator %s", op))
	}

	ln, lok := asNumber(left)
	rn, rok := asNumber(right)
	if !lok || !rok {
		return nil, ErrTypeMismatch.New(fmt.Sprintf("operator %s requires two numbers, got %T and %T", op, left, right))
	}

	switch op {
	case task.BinaryAdd:
		return ln.Add(rn).ToJSON(), nil
	case task.BinarySub:
		return ln.Sub(rn).ToJSON(), nil
	case task.BinaryEq:
		return ln.Compare(rn) == 0, nil
	case task.BinaryLt:
		return ln.Compare(rn) < 0, nil
	case task.BinaryLte:
		return ln.Compare(rn) <= 0, nil
	case task.BinaryGt:
		return ln.Compare(rn) > 0, nil
	case task.BinaryGte:
		return ln.Compare(rn) >= 0, nil
	default:
		return nil, ErrNotImplemented.New(fmt.Sprintf("operator %s", op))
	}
}

func asNumber(v interface{}) (task.Number, bool) {
	jn, ok := v.(json.Number)
	if !ok {
		return task.Number{}, false
	}
	n, err := task.NumberFromJSON(jn)
	if err != nil {
		return task.Number{}, false
	}
	return n, true
}
