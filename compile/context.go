package compile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/badwolf-labs/jsonql/task"
)

// PopulateContext binds each live, non-terminal node's Context from its
// sorted incoming edges, verifying that edge weights form the exact
// sequence 1..k for a known-arity action. Any Accessor left without a
// resolvable parent is an unresolved reference: rather than failing on
// the first one found, every offending path is collected and reported
// together in a single diagnostic, matching spec.md section 4.3 exactly.
func PopulateContext(g *task.Graph) error {
	var unresolved []string

	for i := 0; i < g.NumNodes(); i++ {
		idx := task.NodeIndex(i)
		if g.IsDead(idx) {
			continue
		}
		node := g.Node(idx)
		if node.Action.Kind == task.KindFinalize {
			continue
		}

		arity := node.Action.Arity()
		if arity == 0 {
			continue
		}

		in := g.Incoming(idx)
		sort.Slice(in, func(a, b int) bool { return in[a].Weight < in[b].Weight })

		if arity < 0 {
			// Function: unconstrained arity, bind whatever parents exist.
			node.Context = task.MultiParent(parentIndices(in))
			continue
		}

		if len(in) != arity || !weightsAreSequential(in, arity) {
			if node.Action.Kind == task.KindAccessor {
				unresolved = append(unresolved, strings.Join(node.Action.Path, "."))
				continue
			}
			return ErrArityMismatch.New(fmt.Sprintf(
				"weight mismatch for %s task at node %d: got %d incoming edge(s), want %d with weights 1..%d",
				node.Action.Kind, idx, len(in), arity, arity))
		}

		parents := parentIndices(in)
		switch arity {
		case 1:
			node.Context = task.SingleParent(parents[0])
		case 2:
			node.Context = task.DualParent(parents[0], parents[1])
		default:
			node.Context = task.MultiParent(parents)
		}
	}

	if len(unresolved) > 0 {
		return ErrUnresolvedReference.New(joinParenthesized(unresolved))
	}
	return nil
}

func weightsAreSequential(in []task.InEdge, k int) bool {
	for i, e := range in {
		if e.Weight != i+1 {
			return false
		}
	}
	return len(in) == k
}

func parentIndices(in []task.InEdge) []task.NodeIndex {
	out := make([]task.NodeIndex, len(in))
	for i, e := range in {
		out[i] = e.From
	}
	return out
}

func joinParenthesized(paths []string) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = "(" + p + ")"
	}
	return strings.Join(parts, ", ")
}
