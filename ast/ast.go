// Package ast defines the external parser adapter's output contract: the
// statement and expression shapes spec.md assumes a conventional SQL
// grammar parser already produces. Nothing in this package understands
// dataflow graphs or evaluation — it is a plain syntax tree.
package ast

// Statement is either a SelectStatement or a ForeachStatement.
type Statement interface {
	stmtNode()
}

// SelectStatement is `SELECT <items> FROM <table> [WHERE <expr>]`.
type SelectStatement struct {
	Projection []SelectItem
	From       TableExpr
	Where      Expr // nil when absent
}

func (*SelectStatement) stmtNode() {}

// ForeachStatement is the grammar extension:
//
//	FOREACH <expr> AS <alias>
//	  RETURN <items>
//	  WHEN <expr>        -- optional
//	  FROM <table>
//	  WHERE <expr>       -- optional
type ForeachStatement struct {
	Source    Expr
	LoopAlias string
	Return    []SelectItem
	When      Expr // nil when absent
	From      TableExpr
	Where     Expr // nil when absent
}

func (*ForeachStatement) stmtNode() {}

// SelectItem is one projected expression, optionally aliased with
// `AS <name>`.
type SelectItem struct {
	Expr     Expr
	Alias    string
	HasAlias bool
}

// TableExpr names a FROM source. Joins is populated only so the builder
// has something concrete to reject — this core never interprets more
// than a single bare source.
type TableExpr struct {
	Name  string
	Joins []TableExpr
}

// Expr is any expression node.
type Expr interface {
	exprNode()
}

// Identifier is a single unqualified name, e.g. `version`.
type Identifier struct {
	Name string
}

func (*Identifier) exprNode() {}

// CompoundIdentifier is a dotted path, e.g. `payload.meta.id`.
type CompoundIdentifier struct {
	Parts []string
}

func (*CompoundIdentifier) exprNode() {}

// UnaryOp enumerates unary operators the grammar can produce. The parser
// never narrows the set, and the evaluator implements all three.
type UnaryOp string

const (
	UnaryPlus  UnaryOp = "+"
	UnaryMinus UnaryOp = "-"
	UnaryNot   UnaryOp = "!"
)

// UnaryExpr is `<op> <expr>`.
type UnaryExpr struct {
	Op UnaryOp
	X  Expr
}

func (*UnaryExpr) exprNode() {}

// BinaryOp enumerates binary operators the grammar can produce — a
// superset of what the evaluator implements. `*` and `/` parse but are
// reserved at evaluation time; see compile/build.go and plan/evaluate.go.
type BinaryOp string

const (
	BinaryAdd BinaryOp = "+"
	BinarySub BinaryOp = "-"
	BinaryMul BinaryOp = "*"
	BinaryDiv BinaryOp = "/"
	BinaryEq  BinaryOp = "="
	BinaryLt  BinaryOp = "<"
	BinaryLte BinaryOp = "<="
	BinaryGt  BinaryOp = ">"
	BinaryGte BinaryOp = ">="
)

// BinaryExpr is `<left> <op> <right>`.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// NumberLit carries the literal text of a numeric literal undecided
// between integer and float — the builder classifies it (see
// compile/build.go), matching spec.md's "integer iff no '.' and parses as
// signed 64-bit" rule.
type NumberLit struct {
	Text string
}

func (*NumberLit) exprNode() {}

// StringLit is a single-quoted string literal.
type StringLit struct {
	Value string
}

func (*StringLit) exprNode() {}

// ParenExpr is `( <expr> )`. The builder produces the same subgraph as
// its inner expression; an alias attached to a ParenExpr propagates to
// the inner expression's node.
type ParenExpr struct {
	X Expr
}

func (*ParenExpr) exprNode() {}

// StarExpr is `*`. It is representable so the builder has a concrete,
// named construct to reject — wildcard projections are not select-item
// expressions.
type StarExpr struct{}

func (*StarExpr) exprNode() {}
