package graph

import (
	"fmt"
	"sync"

	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Editor owns a mutable node/edge collection and keeps it consistent with the
// edge rules. Every method is safe for concurrent use, which lets SetStatus serve
// as the scheduler's status callback.
type Editor struct {
	mu       sync.RWMutex
	nodes    []types.Node
	edges    []types.Edge
	selected string
}

// NewEditor creates an editor; edges that are invalid for the initial nodes are
// dropped and nodes without a status start pending.
func NewEditor(nodes []types.Node, edges []types.Edge) *Editor {
	normalized := make([]types.Node, 0, len(nodes))
	for _, n := range nodes {
		n = n.Normalize()
		if n.Status == "" {
			n.Status = types.StatusPending
		}
		normalized = append(normalized, n)
	}
	return &Editor{
		nodes: normalized,
		edges: CleanInvalidEdges(edges, normalized),
	}
}

// Snapshot returns copies of the current nodes and edges.
func (e *Editor) Snapshot() ([]types.Node, []types.Edge) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]types.Node(nil), e.nodes...), append([]types.Edge(nil), e.edges...)
}

// Node returns the node with the given id.
func (e *Editor) Node(id string) (types.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i := e.indexOf(id); i >= 0 {
		return e.nodes[i], true
	}
	return types.Node{}, false
}

// AddNode appends a node. An empty ID is replaced with a generated one.
func (e *Editor) AddNode(node types.Node) (types.Node, error) {
	if !node.Type.Valid() {
		return types.Node{}, errors.Wrapf(ErrInvalidStepType, "step type %q", node.Type)
	}
	if node.ID == "" {
		node.ID = fmt.Sprintf("%s-%s", node.Type, uuid.New().String())
	}
	node = node.Normalize()
	if node.Status == "" {
		node.Status = types.StatusPending
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.indexOf(node.ID) >= 0 {
		return types.Node{}, NewValidationError("add node", node.ID, ErrDuplicateNode)
	}
	e.nodes = append(e.nodes, node)
	return node, nil
}

// UpdateNode replaces a node's data. When the step type or the conditional flag
// changes, edges that are no longer legal are dropped.
func (e *Editor) UpdateNode(node types.Node) error {
	if !node.Type.Valid() {
		return errors.Wrapf(ErrInvalidStepType, "step type %q", node.Type)
	}
	node = node.Normalize()

	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(node.ID)
	if i < 0 {
		return NewValidationError("update node", node.ID, ErrNodeNotFound)
	}

	old := e.nodes[i]
	if node.Status == "" {
		node.Status = old.Status
	}
	e.nodes[i] = node
	if old.Type != node.Type || old.HasConditionalOutputs != node.HasConditionalOutputs {
		e.edges = ReconcileEdges(e.nodes, e.edges)
	}
	return nil
}

// DeleteNode removes a node together with every edge touching it.
func (e *Editor) DeleteNode(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return NewValidationError("delete node", id, ErrNodeNotFound)
	}
	e.nodes = append(e.nodes[:i], e.nodes[i+1:]...)

	kept := e.edges[:0]
	for _, edge := range e.edges {
		if edge.Source != id && edge.Target != id {
			kept = append(kept, edge)
		}
	}
	e.edges = kept
	if e.selected == id {
		e.selected = ""
	}
	return nil
}

// Connect adds an edge after checking it against the current nodes.
func (e *Editor) Connect(edge types.Edge) (types.Edge, error) {
	edge.SourceHandle = edge.SourceHandle.Normalize()
	if edge.ID == "" {
		edge.ID = fmt.Sprintf("%s-%s-%s", edge.Source, edge.Target, edge.SourceHandle)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !IsEdgeValid(edge, e.nodes) {
		return types.Edge{}, NewValidationError("connect", edge.Source, ErrInvalidEdge)
	}
	for _, existing := range e.edges {
		if existing.ID == edge.ID {
			return existing, nil
		}
	}
	e.edges = append(e.edges, edge)
	return edge, nil
}

// RemoveEdge deletes the edge with the given id, if present.
func (e *Editor) RemoveEdge(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, edge := range e.edges {
		if edge.ID == id {
			e.edges = append(e.edges[:i], e.edges[i+1:]...)
			return
		}
	}
}

// Replace swaps the whole collection, sanitizing edges as on load.
func (e *Editor) Replace(nodes []types.Node, edges []types.Edge) {
	fresh := NewEditor(nodes, edges)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes, e.edges, e.selected = fresh.nodes, fresh.edges, ""
}

// SetStatus writes a node's status projection. Unknown ids are ignored.
func (e *Editor) SetStatus(nodeID string, status types.ExecutionStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(nodeID); i >= 0 {
		e.nodes[i].Status = status
	}
}

// Select marks a node as selected; an empty id clears the selection.
func (e *Editor) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id != "" && e.indexOf(id) < 0 {
		return NewValidationError("select", id, ErrNodeNotFound)
	}
	e.selected = id
	return nil
}

// Selected returns the selected node, if any.
func (e *Editor) Selected() (types.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.selected == "" {
		return types.Node{}, false
	}
	if i := e.indexOf(e.selected); i >= 0 {
		return e.nodes[i], true
	}
	return types.Node{}, false
}

func (e *Editor) indexOf(id string) int {
	for i, n := range e.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
