package graph

import (
	"fmt"
	"io"
)

// Info represents the graph structure for visualization
type Info struct {
	Start string
	Nodes []NodeInfo
	Edges []EdgeInfo
}

// NodeInfo describes one node for printing
type NodeInfo struct {
	ID          string
	Name        string
	Icon        string
	Type        string
	Conditional bool
	Status      string
}

// EdgeInfo describes one edge for printing
type EdgeInfo struct {
	From string
	To   string
	Type string // "default", "success" or "failure"
}

// GetGraphInfo collects the printable structure of the graph.
func (g *Graph) GetGraphInfo() *Info {
	info := &Info{
		Nodes: make([]NodeInfo, 0, len(g.order)),
		Edges: make([]EdgeInfo, 0, len(g.edges)),
	}
	if start, ok := StartNode(g.Nodes()); ok {
		info.Start = start.ID
	}

	for _, n := range g.Nodes() {
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:          n.ID,
			Name:        n.Name,
			Icon:        n.Type.Icon(),
			Type:        string(n.Type),
			Conditional: n.HasConditionalOutputs,
			Status:      string(n.Status),
		})
	}

	for _, e := range g.edges {
		info.Edges = append(info.Edges, EdgeInfo{
			From: e.Source,
			To:   e.Target,
			Type: string(e.SourceHandle.Normalize()),
		})
	}

	return info
}

// PrintGraph writes a human readable outline of the graph to w.
func (g *Graph) PrintGraph(w io.Writer) {
	info := g.GetGraphInfo()

	fmt.Fprintln(w, "Graph Structure:")
	fmt.Fprintf(w, "Entry Point: %s\n\n", info.Start)

	fmt.Fprintln(w, "Nodes:")
	for _, node := range info.Nodes {
		marker := "-"
		if node.ID == info.Start {
			marker = "*"
		}
		suffix := ""
		if node.Conditional {
			suffix = " [conditional]"
		}
		fmt.Fprintf(w, "  %s %s %s (%s, %s)%s\n", marker, node.Icon, node.Name, node.ID, node.Type, suffix)
	}

	fmt.Fprintln(w, "\nEdges:")
	for _, edge := range info.Edges {
		switch edge.Type {
		case "success", "failure":
			fmt.Fprintf(w, "  %s --[%s]--> %s\n", edge.From, edge.Type, edge.To)
		default:
			fmt.Fprintf(w, "  %s --> %s\n", edge.From, edge.To)
		}
	}
}
