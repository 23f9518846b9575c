package compile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/badwolf-labs/jsonql/ast"
	"github.com/badwolf-labs/jsonql/task"
)

// BuiltSelect records which nodes of a freshly built graph are projection
// outputs, the WHERE predicate (if any), and the opaque source name — the
// bookkeeping produce_select_query/build_foreach_query hands to the
// dealias pass and, later, the scheduler. Node indices stay valid across
// every later pass; nothing here is recomputed after Build returns.
type BuiltSelect struct {
	Projections []task.NodeIndex
	Where       *task.NodeIndex
	Table       string
}

// BuildSelect converts a SELECT statement's AST into a task graph plus its
// BuiltSelect bookkeeping. Node 0 is Root and node 1 is Finalize by
// construction (task.NewGraph's invariant); every subsequent node comes
// from walking the projection list and the optional WHERE expression.
func BuildSelect(stmt *ast.SelectStatement) (*task.Graph, *BuiltSelect, error) {
	if len(stmt.From.Joins) > 0 {
		return nil, nil, ErrUnsupportedConstruct.New("joins in FROM")
	}

	g := task.NewGraph()
	built := &BuiltSelect{Table: stmt.From.Name}

	for _, item := range stmt.Projection {
		idx, err := buildSelectItem(g, item)
		if err != nil {
			return nil, nil, err
		}
		markRequired(g, idx)
		built.Projections = append(built.Projections, idx)
	}

	if stmt.Where != nil {
		idx, err := buildExpr(g, stmt.Where)
		if err != nil {
			return nil, nil, err
		}
		markRequired(g, idx)
		built.Where = &idx
	}

	return g, built, nil
}

func markRequired(g *task.Graph, idx task.NodeIndex) {
	g.Node(idx).Required = true
	g.AddEdge(idx, task.FinalizeIndex, 1)
}

func buildSelectItem(g *task.Graph, item ast.SelectItem) (task.NodeIndex, error) {
	if _, ok := item.Expr.(*ast.StarExpr); ok {
		return 0, ErrUnsupportedConstruct.New("wildcard projection (*)")
	}
	idx, err := buildExpr(g, item.Expr)
	if err != nil {
		return 0, err
	}
	if item.HasAlias {
		g.Node(idx).Alias = item.Alias
	}
	return idx, nil
}

// buildExpr recurses over an expression, returning the index of the node
// that produces its value. A ParenExpr deliberately returns the same
// index as its inner expression rather than allocating a wrapper node, so
// an alias attached above a parenthesized expression lands on the inner
// node exactly as spec.md's conversion table requires.
func buildExpr(g *task.Graph, e ast.Expr) (task.NodeIndex, error) {
	switch x := e.(type) {
	case *ast.Identifier:
		return g.AddNode(task.QueryTask{Action: task.AccessorAction([]string{x.Name})}), nil

	case *ast.CompoundIdentifier:
		path := append([]string{}, x.Parts...)
		return g.AddNode(task.QueryTask{Action: task.AccessorAction(path)}), nil

	case *ast.UnaryExpr:
		sub, err := buildExpr(g, x.X)
		if err != nil {
			return 0, err
		}
		op, err := convertUnaryOp(x.Op)
		if err != nil {
			return 0, err
		}
		idx := g.AddNode(task.QueryTask{Action: task.UnaryOpAction(op)})
		g.AddEdge(sub, idx, 1)
		return idx, nil

	case *ast.BinaryExpr:
		left, err := buildExpr(g, x.Left)
		if err != nil {
			return 0, err
		}
		right, err := buildExpr(g, x.Right)
		if err != nil {
			return 0, err
		}
		op, err := convertBinaryOp(x.Op)
		if err != nil {
			return 0, err
		}
		idx := g.AddNode(task.QueryTask{Action: task.BinaryOpAction(op)})
		g.AddEdge(left, idx, 1)
		g.AddEdge(right, idx, 2)
		return idx, nil

	case *ast.NumberLit:
		lit, err := classifyNumberLiteral(x.Text)
		if err != nil {
			return 0, err
		}
		return g.AddNode(task.QueryTask{Action: task.LiteralAction(lit)}), nil

	case *ast.StringLit:
		return g.AddNode(task.QueryTask{Action: task.LiteralAction(task.StringLiteral(x.Value))}), nil

	case *ast.ParenExpr:
		return buildExpr(g, x.X)

	default:
		return 0, ErrUnsupportedConstruct.New(fmt.Sprintf("%T", e))
	}
}

// classifyNumberLiteral implements spec.md's exact rule: integer iff the
// text has no '.' and parses as a signed 64-bit integer; otherwise parse
// as a double; if neither succeeds, it is a compile error.
func classifyNumberLiteral(text string) (task.Literal, error) {
	if !strings.Contains(text, ".") {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return task.IntegerLiteral(v), nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return task.Literal{}, ErrUnsupportedConstruct.New(fmt.Sprintf("numeric literal %q", text))
	}
	return task.FloatLiteral(v), nil
}

func convertUnaryOp(op ast.UnaryOp) (task.UnaryOp, error) {
	switch op {
	case ast.UnaryPlus:
		return task.UnaryPlus, nil
	case ast.UnaryMinus:
		return task.UnaryMinus, nil
	case ast.UnaryNot:
		return task.UnaryNot, nil
	default:
		return 0, ErrUnsupportedConstruct.New(fmt.Sprintf("unary operator %q", op))
	}
}

func convertBinaryOp(op ast.BinaryOp) (task.BinaryOp, error) {
	switch op {
	case ast.BinaryAdd:
		return task.BinaryAdd, nil
	case ast.BinarySub:
		return task.BinarySub, nil
	case ast.BinaryMul:
		return task.BinaryMul, nil
	case ast.BinaryDiv:
		return task.BinaryDiv, nil
	case ast.BinaryEq:
		return task.BinaryEq, nil
	case ast.BinaryLt:
		return task.BinaryLt, nil
	case ast.BinaryLte:
		return task.BinaryLte, nil
	case ast.BinaryGt:
		return task.BinaryGt, nil
	case ast.BinaryGte:
		return task.BinaryGte, nil
	default:
		return 0, ErrUnsupportedConstruct.New(fmt.Sprintf("binary operator %q", op))
	}
}

// ForeachSelects synthesizes the outer and inner SELECT statements a
// FOREACH statement compiles down to — the outer's single projection is
// the iterated expression itself (aliased to the loop variable), its
// predicate is the outer WHERE; the inner's projections are the RETURN
// items, its predicate is WHEN. Each then goes through the ordinary
// SELECT pipeline rather than a parallel foreach-specific code path.
func ForeachSelects(stmt *ast.ForeachStatement) (outer, inner *ast.SelectStatement) {
	outer = &ast.SelectStatement{
		Projection: []ast.SelectItem{{Expr: stmt.Source, Alias: stmt.LoopAlias, HasAlias: true}},
		From:       stmt.From,
		Where:      stmt.Where,
	}
	inner = &ast.SelectStatement{
		Projection: stmt.Return,
		From:       stmt.From,
		Where:      stmt.When,
	}
	return outer, inner
}
