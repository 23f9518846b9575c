package compile

import (
	"sort"

	"github.com/badwolf-labs/jsonql/task"
)

// RootAlias is the reserved name of the input document's root — spec.md
// section 6's "payload names the input root at the top level". It is
// always reserved as a user alias, in every plan, not only the top-level
// one.
const RootAlias = "payload"

// Dealias rewrites accessor references whose first path segment names an
// in-scope alias so they read from the aliased producer instead of
// implicitly from Root. rootAlias binds task.RootIndex into the alias
// scope (RootAlias at the top level, the foreach loop variable for an
// inner plan); extraReserved additionally reserves a name beyond
// RootAlias itself (the loop variable, when dealiasing a foreach inner
// plan) even if it is not rootAlias.
func Dealias(g *task.Graph, rootAlias string, extraReserved string) error {
	reserved := map[string]bool{RootAlias: true}
	if extraReserved != "" {
		reserved[extraReserved] = true
	}

	aliases := map[string]task.NodeIndex{}
	for i := 0; i < g.NumNodes(); i++ {
		idx := task.NodeIndex(i)
		n := g.Node(idx)
		if g.IsDead(idx) || n.Alias == "" {
			continue
		}
		if reserved[n.Alias] {
			return ErrReservedAlias.New(n.Alias)
		}
		aliases[n.Alias] = idx
	}
	aliases[rootAlias] = task.RootIndex

	// Snapshot the node count before mutating: dealias never allocates new
	// nodes, only new edges, so iterating the original index range is safe.
	n := g.NumNodes()
	for i := 0; i < n; i++ {
		idx := task.NodeIndex(i)
		if g.IsDead(idx) {
			continue
		}
		node := g.Node(idx)
		if node.Action.Kind != task.KindAccessor || len(node.Action.Path) == 0 {
			continue
		}
		producer, ok := aliases[node.Action.Path[0]]
		if !ok {
			continue
		}

		switch {
		case len(node.Action.Path) == 1 && !node.Required:
			g.ReparentOutgoing(idx, producer)
			g.Tombstone(idx)

		case len(node.Action.Path) == 1 && node.Required:
			node.Action = task.LinkAction()
			g.AddEdge(producer, idx, 1)

		default:
			node.Action = task.AccessorAction(node.Action.Path[1:])
			g.AddEdge(producer, idx, 1)
		}
	}

	adoptAncestorAliases(g, n)
	return nil
}

// adoptAncestorAliases implements the post-pass: every surviving required
// Link node without its own alias walks its incoming edges upward
// through Link nodes until it finds an ancestor that bears an alias or
// whose action is not Link, and adopts that ancestor's alias (a no-op if
// the ancestor has none).
func adoptAncestorAliases(g *task.Graph, n int) {
	for i := 0; i < n; i++ {
		idx := task.NodeIndex(i)
		if g.IsDead(idx) {
			continue
		}
		node := g.Node(idx)
		if node.Action.Kind != task.KindLink || !node.Required || node.Alias != "" {
			continue
		}
		node.Alias = findAliasAncestor(g, idx)
	}
}

// AdoptProjectionAliases runs the same ancestor walk for every projection
// node still lacking an alias, so an unaliased projection like `version + 5`
// inherits the output label of the aliased value it was computed from. The
// walk follows the leftmost (weight-1) parent, the operand a reader would
// consider the expression's subject.
func AdoptProjectionAliases(g *task.Graph, projections []task.NodeIndex) {
	for _, idx := range projections {
		if g.IsDead(idx) {
			continue
		}
		node := g.Node(idx)
		if node.Alias != "" {
			continue
		}
		node.Alias = findAliasAncestor(g, idx)
	}
}

func findAliasAncestor(g *task.Graph, idx task.NodeIndex) string {
	cur := idx
	for {
		in := g.Incoming(cur)
		if len(in) == 0 {
			return ""
		}
		sort.Slice(in, func(a, b int) bool { return in[a].Weight < in[b].Weight })
		parent := in[0].From
		parentNode := g.Node(parent)
		if parentNode.Alias != "" {
			return parentNode.Alias
		}
		if parentNode.Action.Kind != task.KindLink {
			return ""
		}
		cur = parent
	}
}
