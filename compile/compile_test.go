package compile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/badwolf-labs/jsonql/ast"
	"github.com/badwolf-labs/jsonql/compile"
	"github.com/badwolf-labs/jsonql/task"
)

func selectAST(proj []ast.SelectItem, where ast.Expr) *ast.SelectStatement {
	return &ast.SelectStatement{Projection: proj, From: ast.TableExpr{Name: "/t"}, Where: where}
}

func TestBuildRejectsJoins(t *testing.T) {
	stmt := selectAST([]ast.SelectItem{{Expr: &ast.Identifier{Name: "x"}}}, nil)
	stmt.From.Joins = []ast.TableExpr{{Name: "/other"}}
	_, _, err := compile.BuildSelect(stmt)
	require.Error(t, err)
}

func TestBuildRejectsWildcard(t *testing.T) {
	stmt := selectAST([]ast.SelectItem{{Expr: &ast.StarExpr{}}}, nil)
	_, _, err := compile.BuildSelect(stmt)
	require.Error(t, err)
}

func TestDealiasRejectsReservedRootAlias(t *testing.T) {
	// SELECT payload AS payload FROM "/t" — spec.md end-to-end scenario 6.
	stmt := selectAST([]ast.SelectItem{{Expr: &ast.Identifier{Name: "payload"}, Alias: "payload", HasAlias: true}}, nil)
	g, _, err := compile.BuildSelect(stmt)
	require.NoError(t, err)
	err = compile.Dealias(g, compile.RootAlias, "")
	require.Error(t, err)
}

func TestDealiasCollapsesUnrequiredAliasReference(t *testing.T) {
	// version AS version, then `version + 5` referencing the alias.
	stmt := selectAST([]ast.SelectItem{
		{Expr: &ast.Identifier{Name: "version"}, Alias: "version", HasAlias: true},
		{Expr: &ast.BinaryExpr{Op: ast.BinaryAdd, Left: &ast.Identifier{Name: "version"}, Right: &ast.NumberLit{Text: "5"}}},
	}, nil)
	g, built, err := compile.BuildSelect(stmt)
	require.NoError(t, err)
	require.NoError(t, compile.Dealias(g, compile.RootAlias, ""))
	require.NoError(t, compile.PopulateContext(g))

	// First projection became a required Link (alias survives as output).
	first := g.Node(built.Projections[0])
	require.Equal(t, task.KindLink, first.Action.Kind)
	require.Equal(t, "version", first.Alias)
}

func TestAdoptProjectionAliasesInheritsFromSubject(t *testing.T) {
	// `payload.version AS version, version + 5`: the unaliased BinaryOp
	// projection inherits "version" from its left operand's producer.
	stmt := selectAST([]ast.SelectItem{
		{Expr: &ast.CompoundIdentifier{Parts: []string{"payload", "version"}}, Alias: "version", HasAlias: true},
		{Expr: &ast.BinaryExpr{Op: ast.BinaryAdd, Left: &ast.Identifier{Name: "version"}, Right: &ast.NumberLit{Text: "5"}}},
	}, nil)
	g, built, err := compile.BuildSelect(stmt)
	require.NoError(t, err)
	require.NoError(t, compile.Dealias(g, compile.RootAlias, ""))
	compile.AdoptProjectionAliases(g, built.Projections)

	require.Equal(t, "version", g.Node(built.Projections[1]).Alias)
}

func TestAdoptProjectionAliasesLeavesLiteralSubjectsUnlabeled(t *testing.T) {
	stmt := selectAST([]ast.SelectItem{
		{Expr: &ast.BinaryExpr{Op: ast.BinaryAdd, Left: &ast.NumberLit{Text: "2"}, Right: &ast.NumberLit{Text: "3"}}},
	}, nil)
	g, built, err := compile.BuildSelect(stmt)
	require.NoError(t, err)
	require.NoError(t, compile.Dealias(g, compile.RootAlias, ""))
	compile.AdoptProjectionAliases(g, built.Projections)

	require.Equal(t, "", g.Node(built.Projections[0]).Alias)
}

func TestPopulateContextReportsUnresolvedAccessor(t *testing.T) {
	// "nosuchalias" is neither the root alias nor any declared alias, so
	// dealias never wires it to a producer; PopulateContext must report
	// it as an unresolved reference rather than silently leaving it
	// uncomputed.
	stmt := selectAST([]ast.SelectItem{{Expr: &ast.Identifier{Name: "nosuchalias"}}}, nil)
	g, _, err := compile.BuildSelect(stmt)
	require.NoError(t, err)
	require.NoError(t, compile.Dealias(g, compile.RootAlias, ""))
	err = compile.PopulateContext(g)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nosuchalias")
}
