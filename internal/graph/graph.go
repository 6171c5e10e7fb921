package graph

import (
	"github.com/avi3tal/stepflow/pkg/types"
)

// CanHaveConditionalOutputs reports whether a step type may route on its outcome.
func CanHaveConditionalOutputs(t types.StepType) bool {
	return t != types.StepStart && t != types.StepEnd
}

// NeedsInput reports whether a step type accepts incoming edges.
func NeedsInput(t types.StepType) bool {
	return t != types.StepStart
}

// NeedsOutput reports whether a step type has outgoing edges.
func NeedsOutput(t types.StepType) bool {
	return t != types.StepEnd
}

// Graph is a read-only, indexed view over a node/edge snapshot
type Graph struct {
	nodes    map[string]types.Node
	order    []string
	edges    []types.Edge
	outgoing map[string][]types.Edge
	incoming map[string][]types.Edge
}

// New indexes the given snapshot. Nodes sharing an ID keep the first occurrence.
func New(nodes []types.Node, edges []types.Edge) *Graph {
	g := &Graph{
		nodes:    make(map[string]types.Node, len(nodes)),
		order:    make([]string, 0, len(nodes)),
		edges:    append([]types.Edge(nil), edges...),
		outgoing: make(map[string][]types.Edge),
		incoming: make(map[string][]types.Edge),
	}
	for _, n := range nodes {
		if _, exists := g.nodes[n.ID]; exists {
			continue
		}
		g.nodes[n.ID] = n.Normalize()
		g.order = append(g.order, n.ID)
	}
	for _, e := range g.edges {
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
		g.incoming[e.Target] = append(g.incoming[e.Target], e)
	}
	return g
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (types.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id exists in the snapshot.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the nodes in snapshot order.
func (g *Graph) Nodes() []types.Node {
	out := make([]types.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns the edges in snapshot order.
func (g *Graph) Edges() []types.Edge {
	return append([]types.Edge(nil), g.edges...)
}

// Outgoing returns the edges leaving id.
func (g *Graph) Outgoing(id string) []types.Edge {
	return g.outgoing[id]
}

// Incoming returns the edges entering id.
func (g *Graph) Incoming(id string) []types.Edge {
	return g.incoming[id]
}

// IsEdgeValid checks an edge against the indexed node set.
func (g *Graph) IsEdgeValid(edge types.Edge) bool {
	source, ok := g.nodes[edge.Source]
	if !ok {
		return false
	}
	if _, ok := g.nodes[edge.Target]; !ok {
		return false
	}

	handle := edge.SourceHandle.Normalize()
	if source.HasConditionalOutputs {
		return handle == types.HandleSuccess || handle == types.HandleFailure
	}
	return handle == types.HandleDefault
}

// IsEdgeValid reports whether both endpoints of edge exist in nodes and its source
// handle matches the source node's output capability.
func IsEdgeValid(edge types.Edge, nodes []types.Node) bool {
	return New(nodes, nil).IsEdgeValid(edge)
}

// CleanInvalidEdges returns the edges that are valid against the current node set.
func CleanInvalidEdges(edges []types.Edge, nodes []types.Node) []types.Edge {
	g := New(nodes, nil)
	cleaned := make([]types.Edge, 0, len(edges))
	for _, e := range edges {
		if g.IsEdgeValid(e) {
			cleaned = append(cleaned, e)
		}
	}
	return cleaned
}

// ReconcileEdges must be called after any change to a node's type or conditional
// flag; edges that became illegal are dropped.
func ReconcileEdges(nodes []types.Node, edges []types.Edge) []types.Edge {
	return CleanInvalidEdges(edges, nodes)
}

// FindCycle returns the node ids of one cycle reachable from any node, or nil.
func (g *Graph) FindCycle() []string {
	const (
		unvisited = iota
		inStack
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string

	var dfs func(id string) []string
	dfs = func(id string) []string {
		state[id] = inStack
		stack = append(stack, id)
		for _, e := range g.outgoing[id] {
			if !g.HasNode(e.Target) {
				continue
			}
			switch state[e.Target] {
			case inStack:
				for i, s := range stack {
					if s == e.Target {
						return append([]string(nil), stack[i:]...)
					}
				}
			case unvisited:
				if cycle := dfs(e.Target); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.order {
		if state[id] == unvisited {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Reachable returns the set of node ids reachable from id, id included.
func (g *Graph) Reachable(id string) map[string]bool {
	visited := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		if visited[n] || !g.HasNode(n) {
			return
		}
		visited[n] = true
		for _, e := range g.outgoing[n] {
			walk(e.Target)
		}
	}
	walk(id)
	return visited
}
