package plan_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/badwolf-labs/jsonql/ast"
	"github.com/badwolf-labs/jsonql/compile"
	"github.com/badwolf-labs/jsonql/plan"
)

func compileForeachPlan(t *testing.T, stmt *ast.ForeachStatement) *plan.ForeachPlan {
	t.Helper()
	outerStmt, innerStmt := compile.ForeachSelects(stmt)

	build := func(s *ast.SelectStatement, rootAlias, reserved string) *plan.SelectPlan {
		g, built, err := compile.BuildSelect(s)
		require.NoError(t, err)
		require.NoError(t, compile.Dealias(g, rootAlias, reserved))
		compile.AdoptProjectionAliases(g, built.Projections)
		require.NoError(t, compile.PopulateContext(g))
		p, err := plan.Schedule(g, built)
		require.NoError(t, err)
		return p
	}

	return &plan.ForeachPlan{
		Outer: build(outerStmt, compile.RootAlias, ""),
		Inner: build(innerStmt, stmt.LoopAlias, stmt.LoopAlias),
	}
}

func foreachOver(source ast.Expr, loopAlias string, ret []ast.SelectItem, when, where ast.Expr) *ast.ForeachStatement {
	return &ast.ForeachStatement{
		Source:    source,
		LoopAlias: loopAlias,
		Return:    ret,
		When:      when,
		From:      ast.TableExpr{Name: "/t"},
		Where:     where,
	}
}

func TestForeachFalseWhereShortCircuitsToEmptyRows(t *testing.T) {
	p := compileForeachPlan(t, foreachOver(
		&ast.CompoundIdentifier{Parts: []string{"payload", "items"}},
		"e",
		[]ast.SelectItem{{Expr: &ast.Identifier{Name: "e"}}},
		nil,
		&ast.BinaryExpr{Op: ast.BinaryGt, Left: &ast.CompoundIdentifier{Parts: []string{"payload", "n"}}, Right: &ast.NumberLit{Text: "100"}},
	))

	r, err := p.Execute(context.Background(), docWithNumbers(t, `{"items": [1,2,3], "n": 1}`))
	require.NoError(t, err)
	require.Equal(t, plan.KindNested, r.Kind)
	require.Empty(t, r.Rows)
	require.True(t, r.HasCond)
	require.Equal(t, false, r.Cond)
}

func TestForeachNonArraySourceFails(t *testing.T) {
	p := compileForeachPlan(t, foreachOver(
		&ast.CompoundIdentifier{Parts: []string{"payload", "n"}},
		"e",
		[]ast.SelectItem{{Expr: &ast.Identifier{Name: "e"}}},
		nil, nil,
	))

	_, err := p.Execute(context.Background(), docWithNumbers(t, `{"n": 1}`))
	require.Error(t, err)
	require.True(t, plan.ErrForeachShape.Is(err))
}

func TestForeachPerElementErrorsDoNotAbortIteration(t *testing.T) {
	// `-e` fails on the string element but the numeric elements still
	// produce rows.
	p := compileForeachPlan(t, foreachOver(
		&ast.CompoundIdentifier{Parts: []string{"payload", "items"}},
		"e",
		[]ast.SelectItem{{Expr: &ast.UnaryExpr{Op: ast.UnaryMinus, X: &ast.Identifier{Name: "e"}}}},
		nil, nil,
	))

	r, err := p.Execute(context.Background(), docWithNumbers(t, `{"items": [1, "oops", 3]}`))
	require.NoError(t, err)
	require.Len(t, r.Rows, 3)
	require.NoError(t, r.Rows[0].Err)
	require.Equal(t, json.Number("-1"), r.Rows[0].Result.Pairs[0].Value)
	require.Error(t, r.Rows[1].Err)
	require.NoError(t, r.Rows[2].Err)
	require.Equal(t, json.Number("-3"), r.Rows[2].Result.Pairs[0].Value)
}

func TestForeachWithoutPredicatesHasNoCond(t *testing.T) {
	p := compileForeachPlan(t, foreachOver(
		&ast.CompoundIdentifier{Parts: []string{"payload", "items"}},
		"e",
		[]ast.SelectItem{{Expr: &ast.Identifier{Name: "e"}}},
		nil, nil,
	))

	r, err := p.Execute(context.Background(), docWithNumbers(t, `{"items": [7]}`))
	require.NoError(t, err)
	require.False(t, r.HasCond)
	require.Len(t, r.Rows, 1)
	require.False(t, r.Rows[0].Result.HasCond)
	require.Equal(t, json.Number("7"), r.Rows[0].Result.Pairs[0].Value)
}
