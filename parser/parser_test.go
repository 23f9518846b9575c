package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/badwolf-labs/jsonql/ast"
)

func TestParseSelectBasic(t *testing.T) {
	stmts, err := Parse(`SELECT payload.version AS version FROM "/topic" WHERE version = 1`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	sel, ok := stmts[0].(*ast.SelectStatement)
	require.True(t, ok)
	require.Len(t, sel.Projection, 1)
	require.True(t, sel.Projection[0].HasAlias)
	require.Equal(t, "version", sel.Projection[0].Alias)
	require.Equal(t, "/topic", sel.From.Name)
	require.NotNil(t, sel.Where)
}

func TestParseMultipleProjectionsAndExpr(t *testing.T) {
	stmts, err := Parse(`SELECT payload.version AS version, payload.meta.id AS id, version + 5, payload.data.payload AS "abc" FROM "/topic" WHERE (version-1) = 0`)
	require.NoError(t, err)
	sel := stmts[0].(*ast.SelectStatement)
	require.Len(t, sel.Projection, 4)

	third := sel.Projection[2].Expr
	bin, ok := third.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinaryAdd, bin.Op)

	where, ok := sel.Where.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.BinaryEq, where.Op)
	paren, ok := where.Left.(*ast.ParenExpr)
	require.True(t, ok)
	_, ok = paren.X.(*ast.BinaryExpr)
	require.True(t, ok)
}

func TestParseForeach(t *testing.T) {
	stmts, err := Parse(`FOREACH payload.data.payload AS "item" RETURN item + 1 WHEN item > 3 FROM "/t" WHERE payload.version >= 1`)
	require.NoError(t, err)
	fe, ok := stmts[0].(*ast.ForeachStatement)
	require.True(t, ok)
	require.Equal(t, "item", fe.LoopAlias)
	require.Len(t, fe.Return, 1)
	require.NotNil(t, fe.When)
	require.NotNil(t, fe.Where)
}

func TestParseAcceptsWildcardAsStarExpr(t *testing.T) {
	// The parser itself accepts `*` as a StarExpr select item (so the
	// builder has something concrete to reject); confirm that shape here.
	stmts, err := Parse(`SELECT * FROM "/t"`)
	require.NoError(t, err)
	sel := stmts[0].(*ast.SelectStatement)
	_, ok := sel.Projection[0].Expr.(*ast.StarExpr)
	require.True(t, ok)
}

func TestParseErrorOnGarbage(t *testing.T) {
	_, err := Parse(`SELECT FROM`)
	require.Error(t, err)
}

func TestParseRecursionLimit(t *testing.T) {
	src := "SELECT "
	for i := 0; i < maxExprDepth+50; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < maxExprDepth+50; i++ {
		src += ")"
	}
	src += " FROM \"/t\""
	_, err := Parse(src)
	require.Error(t, err)
	require.True(t, ErrRecursionLimitExceeded.Is(err))
}
