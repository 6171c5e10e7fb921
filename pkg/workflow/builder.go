package workflow

import (
	"github.com/pkg/errors"

	"github.com/avi3tal/stepflow/internal/graph"
	"github.com/avi3tal/stepflow/pkg/types"
)

// Builder is the fluent DSL for assembling a workflow graph. The first error
// stops further changes and is returned by Build.
type Builder struct {
	name   string
	editor *graph.Editor
	err    error
}

// NewBuilder creates an empty workflow.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, editor: graph.NewEditor(nil, nil)}
}

// Name returns the workflow name.
func (wf *Builder) Name() string {
	return wf.name
}

// Start adds the start step and returns it for chaining.
func (wf *Builder) Start(name string) *FlowStep {
	return wf.Step(Start("start", name))
}

// Step adds node (if not already present) and returns it for chaining.
func (wf *Builder) Step(node types.Node) *FlowStep {
	added, err := wf.ensure(node)
	if err != nil {
		wf.fail(err)
	}
	return &FlowStep{wf: wf, node: added}
}

// Build validates the graph and returns copies of its nodes and edges.
func (wf *Builder) Build() ([]types.Node, []types.Edge, error) {
	if wf.err != nil {
		return nil, nil, wf.err
	}
	nodes, edges := wf.editor.Snapshot()
	if err := graph.Check(nodes); err != nil {
		return nil, nil, errors.Wrapf(err, "workflow %q", wf.name)
	}
	return nodes, edges, nil
}

// Compile builds the graph and wraps it in an App.
func (wf *Builder) Compile(opts ...AppOption) (*App, error) {
	nodes, edges, err := wf.Build()
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}
	return NewApp(nodes, edges, opts...), nil
}

func (wf *Builder) fail(err error) {
	if wf.err == nil {
		wf.err = err
	}
}

// ensure adds node unless a node with the same id exists already.
func (wf *Builder) ensure(node types.Node) (types.Node, error) {
	if node.ID != "" {
		if existing, ok := wf.editor.Node(node.ID); ok {
			return existing, nil
		}
	}
	return wf.editor.AddNode(node)
}

func (wf *Builder) connect(from, to string, handle types.Handle) {
	if wf.err != nil {
		return
	}
	if _, err := wf.editor.Connect(types.Edge{Source: from, Target: to, SourceHandle: handle}); err != nil {
		wf.fail(errors.Wrapf(err, "connect %s -> %s (%s)", from, to, handle.Normalize()))
	}
}

// FlowStep references a step that was just added.
type FlowStep struct {
	wf   *Builder
	node types.Node
}

// ID returns the step's node id.
func (fs *FlowStep) ID() string {
	return fs.node.ID
}

// Then links this step to next through the default output.
func (fs *FlowStep) Then(next types.Node) *FlowStep {
	nextStep := fs.wf.Step(next)
	fs.wf.connect(fs.node.ID, nextStep.node.ID, types.HandleDefault)
	return nextStep
}

// End links this step to an end step.
func (fs *FlowStep) End(end types.Node) error {
	fs.Then(end)
	return fs.wf.err
}

// Branches are the two continuations of a conditional step.
type Branches struct {
	Success *FlowStep
	Failure *FlowStep
}

// ThenIf turns this step conditional and links onSuccess and onFailure to its
// success and failure outputs.
func (fs *FlowStep) ThenIf(onSuccess, onFailure types.Node) Branches {
	wf := fs.wf
	if wf.err == nil && !fs.node.HasConditionalOutputs {
		if !graph.CanHaveConditionalOutputs(fs.node.Type) {
			wf.fail(graph.NewValidationError("then if", fs.node.ID, graph.ErrInvalidEdge))
		} else {
			fs.node.HasConditionalOutputs = true
			wf.fail(wf.editor.UpdateNode(fs.node))
		}
	}

	success := wf.Step(onSuccess)
	failure := wf.Step(onFailure)
	wf.connect(fs.node.ID, success.node.ID, types.HandleSuccess)
	wf.connect(fs.node.ID, failure.node.ID, types.HandleFailure)
	return Branches{Success: success, Failure: failure}
}

// ThenAll forks this step into several steps that run one after another in
// queue order.
func (fs *FlowStep) ThenAll(nodes ...types.Node) *ParallelBuilder {
	pb := &ParallelBuilder{wf: fs.wf}
	for _, n := range nodes {
		pb.steps = append(pb.steps, fs.Then(n))
	}
	return pb
}

// ParallelBuilder holds the steps of a fork until they are joined.
type ParallelBuilder struct {
	wf    *Builder
	steps []*FlowStep
}

// Join links every forked step to join, which runs once all of them finished.
func (pb *ParallelBuilder) Join(join types.Node) *FlowStep {
	joinStep := pb.wf.Step(join)
	for _, s := range pb.steps {
		pb.wf.connect(s.node.ID, joinStep.node.ID, types.HandleDefault)
	}
	return joinStep
}
