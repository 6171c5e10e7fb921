// Package simulation walks a workflow graph step by step, simulating each step and
// reporting status changes and log entries as it goes.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avi3tal/stepflow/internal/graph"
	"github.com/avi3tal/stepflow/internal/logging"
	"github.com/avi3tal/stepflow/internal/outcome"
	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// State is the lifecycle state of a scheduler or of a finished run
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRunning    State = "running"
	StateCompleted  State = "completed" // queue exhausted
	StateStopped    State = "stopped"   // cancelled
	StateFailed     State = "failed"    // runtime error
)

// Report summarizes a finished run
type Report struct {
	RunID      string
	State      State
	Completed  []string // node ids in completion order
	Pending    []string // node ids that never reached a terminal status
	Statuses   map[string]types.ExecutionStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Scheduler runs one simulation at a time over a node/edge snapshot.
type Scheduler struct {
	executor   outcome.Executor
	pause      time.Duration
	now        func() time.Time
	logger     *slog.Logger
	onError    func(error)
	onComplete func(Report)
	log        *Log

	mu      sync.Mutex
	state   State
	current *run // active run, nil when idle
	latest  *run // most recent run, kept after it ends
}

type run struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// emitMu serializes status/log emission against Stop.
	emitMu  sync.Mutex
	stopped bool

	report Report
}

// emit runs fn unless the run has been stopped. It reports whether fn ran.
func (r *run) emit(fn func()) bool {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	if r.stopped || r.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// New creates an idle scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		pause:  DefaultStepPause,
		now:    time.Now,
		logger: logging.Discard(),
		log:    NewLog(),
		state:  StateIdle,
	}
	for _, o := range opts {
		o(s)
	}
	if s.executor == nil {
		s.executor = outcome.NewSimulator()
	}
	return s
}

// Start validates the snapshot and begins an asynchronous run. It returns a
// *graph.ValidationError when the structure is invalid, in which case no status
// is touched. Calling Start while a run is active does nothing. Cancelling ctx
// stops the run. onStatus must not call Start or Stop synchronously.
func (s *Scheduler) Start(ctx context.Context, nodes []types.Node, edges []types.Edge, onStatus types.StatusFunc) error {
	if onStatus == nil {
		onStatus = func(string, types.ExecutionStatus) {}
	}

	s.mu.Lock()
	if s.current != nil {
		s.mu.Unlock()
		s.logger.Debug("run already active, ignoring start")
		return nil
	}

	s.state = StateValidating
	if err := graph.Check(nodes); err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		s.logger.Warn("workflow rejected", "error", err.Error())
		return err
	}

	runCtx, cancel := context.WithCancel(logging.WithLogger(ctx, s.logger))
	r := &run{
		id:     uuid.New().String(),
		ctx:    runCtx,
		cancel: cancel,
		done:   make(chan struct{}),
		report: Report{
			Statuses:  make(map[string]types.ExecutionStatus, len(nodes)),
			StartedAt: s.now(),
		},
	}
	r.report.RunID = r.id
	s.current = r
	s.latest = r
	s.state = StateRunning
	s.log.Clear()
	s.mu.Unlock()

	g := graph.New(nodes, edges)
	s.logger.Info("run started", "run_id", r.id, "nodes", len(g.Nodes()), "edges", len(edges))

	go s.execute(r, g, onStatus)
	return nil
}

// Stop cancels the active run. When Stop returns IsRunning is false and no
// further status or log entry will be produced by that run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	r := s.current
	if r == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.state = StateIdle
	s.mu.Unlock()

	r.cancel()
	r.emitMu.Lock()
	r.stopped = true
	r.emitMu.Unlock()
	s.logger.Info("run stop requested", "run_id", r.id)
}

// ClearLog resets every node to pending through onStatus and empties the log.
func (s *Scheduler) ClearLog(nodes []types.Node, onStatus types.StatusFunc) {
	if onStatus != nil {
		for _, n := range nodes {
			onStatus(n.ID, types.StatusPending)
		}
	}
	s.log.Clear()
}

// IsRunning reports whether a run is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// State returns the scheduler lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Log returns a copy of the execution log.
func (s *Scheduler) Log() []types.LogEntry {
	return s.log.Entries()
}

// ExecutionLog exposes the underlying log, e.g. to subscribe to new entries.
func (s *Scheduler) ExecutionLog() *Log {
	return s.log
}

// Wait blocks until the most recent run has ended and returns its report. The
// error is the run's runtime error, or ctx.Err() if ctx ends first.
func (s *Scheduler) Wait(ctx context.Context) (Report, error) {
	s.mu.Lock()
	r := s.latest
	s.mu.Unlock()
	if r == nil {
		return Report{State: StateIdle}, nil
	}

	select {
	case <-r.done:
		return r.report, r.report.Err
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

func (s *Scheduler) execute(r *run, g *graph.Graph, onStatus types.StatusFunc) {
	var currentID string
	defer func() {
		if p := recover(); p != nil {
			r.report.Err = graph.NewExecutionError("run", currentID, errors.Errorf("panic: %v", p))
		}
		s.finish(r, g)
	}()

	setStatus := func(id string, status types.ExecutionStatus) {
		r.report.Statuses[id] = status
		onStatus(id, status)
	}

	if !r.emit(func() {
		for _, n := range g.Nodes() {
			setStatus(n.ID, types.StatusPending)
		}
	}) {
		return
	}

	start, _ := graph.StartNode(g.Nodes())
	queue := []types.Node{start}
	completed := make(map[string]bool)

	for len(queue) > 0 {
		if r.ctx.Err() != nil {
			return
		}

		current := queue[0]
		queue = queue[1:]
		if completed[current.ID] {
			continue
		}
		currentID = current.ID

		preview := s.preview(current)
		var startedAt time.Time
		if !r.emit(func() {
			startedAt = s.now()
			setStatus(current.ID, types.StatusRunning)
			s.log.Append(types.LogEntry{
				NodeID:    current.ID,
				NodeName:  current.Name,
				Status:    types.StatusRunning,
				Timestamp: startedAt,
				Message:   preview,
			})
		}) {
			return
		}

		status, err := s.executor.Execute(r.ctx, current)
		if r.ctx.Err() != nil {
			s.logger.Debug("step abandoned", "run_id", r.id, "node_id", current.ID)
			return
		}
		if err == nil && !status.IsTerminal() {
			err = errors.Errorf("executor returned non-terminal status %q", status)
		}
		if err != nil {
			r.report.Err = graph.NewExecutionError("execute", current.ID, err)
			return
		}

		if !r.emit(func() {
			finishedAt := s.now()
			duration := finishedAt.Sub(startedAt)
			setStatus(current.ID, status)
			completed[current.ID] = true
			r.report.Completed = append(r.report.Completed, current.ID)
			s.log.Append(types.LogEntry{
				NodeID:    current.ID,
				NodeName:  current.Name,
				Status:    status,
				Timestamp: finishedAt,
				Duration:  &duration,
			})
			s.logger.Info("step finished",
				"run_id", r.id,
				"node_id", current.ID,
				"step_type", string(current.Type),
				"status", string(status),
				"duration", duration,
			)
		}) {
			return
		}

		for _, next := range nextNodes(g, current, status) {
			if completed[next.ID] || isQueued(queue, next.ID) || !joinReady(g, next.ID, completed) {
				continue
			}
			queue = append(queue, next)
		}

		if err := outcome.Sleep(r.ctx, s.pause); err != nil {
			return
		}
	}
}

func (s *Scheduler) finish(r *run, g *graph.Graph) {
	r.report.FinishedAt = s.now()
	switch {
	case r.report.Err != nil:
		r.report.State = StateFailed
	case r.ctx.Err() != nil:
		r.report.State = StateStopped
	default:
		r.report.State = StateCompleted
	}
	for _, n := range g.Nodes() {
		if !r.report.Statuses[n.ID].IsTerminal() {
			r.report.Pending = append(r.report.Pending, n.ID)
		}
	}

	s.mu.Lock()
	if s.current == r {
		s.current = nil
		s.state = StateIdle
	}
	s.mu.Unlock()
	r.cancel()

	attrs := []any{
		"run_id", r.id,
		"state", string(r.report.State),
		"completed", len(r.report.Completed),
		"pending", len(r.report.Pending),
	}
	if r.report.Err != nil {
		s.logger.Error("run failed", append(attrs, "error", r.report.Err.Error())...)
	} else {
		s.logger.Info("run finished", attrs...)
	}

	close(r.done)

	if r.report.Err != nil && s.onError != nil {
		s.onError(r.report.Err)
	}
	if s.onComplete != nil {
		s.onComplete(r.report)
	}
}

func (s *Scheduler) preview(node types.Node) string {
	p, ok := s.executor.(outcome.Previewer)
	if !ok {
		return ""
	}
	text, err := p.Preview(node)
	if err != nil {
		s.logger.Warn("preview failed", "node_id", node.ID, "error", err.Error())
		return ""
	}
	return text
}

// nextNodes resolves the successors selected by a step's outcome. Conditional
// nodes follow only the handle matching status; others follow every edge.
// Edges to unknown nodes are dropped.
func nextNodes(g *graph.Graph, current types.Node, status types.ExecutionStatus) []types.Node {
	var next []types.Node
	want := types.HandleFor(status)
	for _, e := range g.Outgoing(current.ID) {
		if current.HasConditionalOutputs && e.SourceHandle.Normalize() != want {
			continue
		}
		if n, ok := g.Node(e.Target); ok {
			next = append(next, n)
		}
	}
	return next
}

// joinReady reports whether every edge entering id comes from a completed node.
func joinReady(g *graph.Graph, id string, completed map[string]bool) bool {
	for _, e := range g.Incoming(id) {
		if !completed[e.Source] {
			return false
		}
	}
	return true
}

func isQueued(queue []types.Node, id string) bool {
	for _, n := range queue {
		if n.ID == id {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for log output.
func (r Report) String() string {
	return fmt.Sprintf("run %s %s: %d completed, %d pending", r.RunID, r.State, len(r.Completed), len(r.Pending))
}
