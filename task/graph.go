package task

import "fmt"

// NodeIndex identifies a QueryTask within a Graph. Indices are stable for
// the lifetime of the graph: tombstoning a node never renumbers its
// neighbors, and no pass ever compacts the arena.
type NodeIndex int

// RootIndex and FinalizeIndex are fixed by construction: every Graph's
// first two nodes are Root and Finalize, in that order.
const (
	RootIndex     NodeIndex = 0
	FinalizeIndex NodeIndex = 1
)

// Edge is an outgoing edge from some node to To, labeled with a 1-based
// argument position. For a node needing k inputs, its incoming edges must
// carry weights exactly {1, ..., k}.
type Edge struct {
	To     NodeIndex
	Weight int
}

// InEdge pairs an incoming edge with the node it originates from —
// the shape the context populator sorts by weight.
type InEdge struct {
	From   NodeIndex
	Weight int
}

// ContextKind discriminates a resolved TaskContext.
type ContextKind int

const (
	ContextSingle ContextKind = iota
	ContextDual
	ContextMulti
)

// Context is the resolved, ordered parent binding for a node, computed by
// the context populator from its sorted incoming edges.
type Context struct {
	Kind    ContextKind
	Parents []NodeIndex // length 1 for Single, 2 for Dual (left, right), N for Multi
}

func SingleParent(idx NodeIndex) *Context {
	return &Context{Kind: ContextSingle, Parents: []NodeIndex{idx}}
}

func DualParent(left, right NodeIndex) *Context {
	return &Context{Kind: ContextDual, Parents: []NodeIndex{left, right}}
}

func MultiParent(idx []NodeIndex) *Context {
	return &Context{Kind: ContextMulti, Parents: idx}
}

// QueryTask is one node of the dataflow graph.
type QueryTask struct {
	Alias    string
	Action   Action
	Required bool
	Context  *Context // nil until the context populator binds it
	dead     bool
}

// Graph is an arena of QueryTasks plus their outgoing edges. Indices never
// change: Tombstone marks a node dead and clears its outgoing edges rather
// than removing it from the slice, so every NodeIndex handed out earlier
// remains valid for the graph's lifetime.
type Graph struct {
	nodes []QueryTask
	out   [][]Edge
}

// NewGraph returns a graph already containing Root at index 0 and
// Finalize at index 1, per the fixed construction order.
func NewGraph() *Graph {
	g := &Graph{}
	root := g.AddNode(QueryTask{Action: RootAction()})
	finalize := g.AddNode(QueryTask{Action: FinalizeAction()})
	if root != RootIndex || finalize != FinalizeIndex {
		panic("task: Root/Finalize index invariant violated")
	}
	return g
}

// AddNode appends a new node and returns its stable index.
func (g *Graph) AddNode(t QueryTask) NodeIndex {
	idx := NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, t)
	g.out = append(g.out, nil)
	return idx
}

// AddEdge records an outgoing edge from -> to with the given argument
// weight.
func (g *Graph) AddEdge(from, to NodeIndex, weight int) {
	g.out[from] = append(g.out[from], Edge{To: to, Weight: weight})
}

// ReparentOutgoing moves every outgoing edge of from onto to, preserving
// weights, then clears from's outgoing list. Used by the alias resolver
// to collapse an unrequired single-segment accessor into its producer.
func (g *Graph) ReparentOutgoing(from, to NodeIndex) {
	g.out[to] = append(g.out[to], g.out[from]...)
	g.out[from] = nil
}

// Tombstone marks a node Stale, dead, and clears its outgoing edges. The
// node's index and slot remain allocated; nothing reads a dead node's
// slot or action again.
func (g *Graph) Tombstone(idx NodeIndex) {
	g.nodes[idx].Action = StaleAction()
	g.nodes[idx].dead = true
	g.out[idx] = nil
}

// IsDead reports whether idx has been tombstoned.
func (g *Graph) IsDead(idx NodeIndex) bool { return g.nodes[idx].dead }

// Node returns a mutable pointer to the node at idx.
func (g *Graph) Node(idx NodeIndex) *QueryTask { return &g.nodes[idx] }

// NumNodes returns the number of allocated slots, live or dead.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Outgoing returns idx's outgoing edges.
func (g *Graph) Outgoing(idx NodeIndex) []Edge { return g.out[idx] }

// Incoming scans every live node's outgoing edges for ones landing on idx.
// The graphs this package builds are small (one per query statement), so
// a linear scan per call is simpler than maintaining a reverse index and
// keeping it consistent across Tombstone/ReparentOutgoing.
func (g *Graph) Incoming(idx NodeIndex) []InEdge {
	var in []InEdge
	for from := 0; from < len(g.nodes); from++ {
		if g.nodes[from].dead {
			continue
		}
		for _, e := range g.out[from] {
			if e.To == idx {
				in = append(in, InEdge{From: NodeIndex(from), Weight: e.Weight})
			}
		}
	}
	return in
}

// ErrCycle indicates the graph is not acyclic.
type ErrCycle struct{}

func (ErrCycle) Error() string { return "task graph contains a cycle" }

// Toposort returns the live nodes in topological order via Kahn's
// algorithm. Dead (tombstoned) nodes are excluded entirely, as are their
// edges.
func (g *Graph) Toposort() ([]NodeIndex, error) {
	n := len(g.nodes)
	indeg := make([]int, n)
	for from := 0; from < n; from++ {
		if g.nodes[from].dead {
			continue
		}
		for _, e := range g.out[from] {
			if g.nodes[e.To].dead {
				continue
			}
			indeg[e.To]++
		}
	}

	queue := make([]NodeIndex, 0, n)
	for i := 0; i < n; i++ {
		if !g.nodes[i].dead && indeg[i] == 0 {
			queue = append(queue, NodeIndex(i))
		}
	}

	order := make([]NodeIndex, 0, n)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, e := range g.out[cur] {
			if g.nodes[e.To].dead {
				continue
			}
			indeg[e.To]--
			if indeg[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	live := 0
	for i := 0; i < n; i++ {
		if !g.nodes[i].dead {
			live++
		}
	}
	if len(order) != live {
		return nil, ErrCycle{}
	}
	return order, nil
}

// String renders a compact per-node dump for plan diagnostics and the CLI
// driver's plan printout.
func (g *Graph) String() string {
	s := ""
	for i, n := range g.nodes {
		tag := ""
		if n.dead {
			tag = " (dead)"
		}
		alias := n.Alias
		if alias == "" {
			alias = "-"
		}
		s += fmt.Sprintf("[%d] %s alias=%s required=%v%s\n", i, n.Action.Kind, alias, n.Required, tag)
	}
	return s
}
