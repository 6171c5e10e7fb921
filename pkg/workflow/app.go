// Package workflow is the user-facing API: a fluent Builder for workflow graphs
// and an App that edits, simulates and persists one graph.
package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/avi3tal/stepflow/internal/graph"
	"github.com/avi3tal/stepflow/internal/logging"
	"github.com/avi3tal/stepflow/internal/simulation"
	"github.com/avi3tal/stepflow/internal/store"
	"github.com/avi3tal/stepflow/pkg/types"
)

// ErrNoStore is returned by Save and Load when the App has no store.
var ErrNoStore = errors.New("no store configured")

// Callback is invoked after a run ends (success or error).
type Callback interface {
	OnComplete(ctx context.Context, report simulation.Report) error
	OnError(ctx context.Context, err error) error
}

// App ties a graph editor, a scheduler and an optional store together.
type App struct {
	editor    *graph.Editor
	scheduler *simulation.Scheduler
	callback  Callback
	store     store.Store
	logger    *slog.Logger
	schedOpts []simulation.Option

	mu     sync.Mutex
	runCtx context.Context
}

// AppOption is a functional option that configures the App before finalizing.
type AppOption func(*App)

func WithCallback(cb Callback) AppOption {
	return func(a *App) {
		a.callback = cb
	}
}

func WithStore(s store.Store) AppOption {
	return func(a *App) {
		a.store = s
	}
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithSchedulerOptions passes options through to the scheduler.
func WithSchedulerOptions(opts ...simulation.Option) AppOption {
	return func(a *App) {
		a.schedOpts = append(a.schedOpts, opts...)
	}
}

// NewApp creates an App over nodes and edges. Invalid edges are dropped.
func NewApp(nodes []types.Node, edges []types.Edge, opts ...AppOption) *App {
	app := &App{
		editor: graph.NewEditor(nodes, edges),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(app)
	}

	schedOpts := append([]simulation.Option{simulation.WithLogger(app.logger)}, app.schedOpts...)
	schedOpts = append(schedOpts,
		simulation.WithErrorHandler(app.onError),
		simulation.WithCompletionHandler(app.onComplete),
	)
	app.scheduler = simulation.New(schedOpts...)
	return app
}

// Editor gives access to the graph being edited.
func (app *App) Editor() *graph.Editor {
	return app.editor
}

// Validate runs the structural check on the current nodes.
func (app *App) Validate() types.ValidationResult {
	nodes, _ := app.editor.Snapshot()
	return graph.Validate(nodes)
}

// Run starts a simulation on the current graph. Node statuses are written back
// into the editor as the run progresses.
func (app *App) Run(ctx context.Context) error {
	nodes, edges := app.editor.Snapshot()

	app.mu.Lock()
	app.runCtx = context.WithoutCancel(ctx)
	app.mu.Unlock()

	if err := app.scheduler.Start(ctx, nodes, edges, app.editor.SetStatus); err != nil {
		return errors.Wrap(err, "run: workflow rejected")
	}
	return nil
}

// Invoke runs the graph once and waits for the run to end.
func (app *App) Invoke(ctx context.Context) (simulation.Report, error) {
	if err := app.Run(ctx); err != nil {
		return simulation.Report{}, err
	}
	return app.scheduler.Wait(ctx)
}

// Wait blocks until the current run ends.
func (app *App) Wait(ctx context.Context) (simulation.Report, error) {
	return app.scheduler.Wait(ctx)
}

// Stop cancels the active run, if any.
func (app *App) Stop() {
	app.scheduler.Stop()
}

// IsRunning reports whether a run is active.
func (app *App) IsRunning() bool {
	return app.scheduler.IsRunning()
}

// Log returns the execution log of the latest run.
func (app *App) Log() []types.LogEntry {
	return app.scheduler.Log()
}

// ClearLog resets every node to pending and empties the log.
func (app *App) ClearLog() {
	nodes, _ := app.editor.Snapshot()
	app.scheduler.ClearLog(nodes, app.editor.SetStatus)
}

// SelectNode selects a node for editing. Selecting while a run is active stops
// the run and clears the log.
func (app *App) SelectNode(id string) error {
	if app.scheduler.IsRunning() {
		app.scheduler.Stop()
		app.ClearLog()
	}
	return app.editor.Select(id)
}

// Save persists the current nodes and edges.
func (app *App) Save(ctx context.Context) error {
	if app.store == nil {
		return ErrNoStore
	}
	nodes, edges := app.editor.Snapshot()
	if err := app.store.Save(ctx, store.Flow{Nodes: nodes, Edges: edges}); err != nil {
		return errors.Wrap(err, "save workflow")
	}
	app.logger.Info("workflow saved", "nodes", len(nodes), "edges", len(edges))
	return nil
}

// Load replaces the graph with the saved one. Any active run is stopped, every
// node starts pending and invalid edges are dropped.
func (app *App) Load(ctx context.Context) error {
	if app.store == nil {
		return ErrNoStore
	}
	flow, err := app.store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load workflow")
	}

	app.scheduler.Stop()
	for i := range flow.Nodes {
		flow.Nodes[i].Status = types.StatusPending
	}
	app.editor.Replace(flow.Nodes, flow.Edges)
	app.scheduler.ClearLog(nil, nil)

	nodes, edges := app.editor.Snapshot()
	app.logger.Info("workflow loaded",
		"nodes", len(nodes),
		"edges", len(edges),
		"dropped_edges", len(flow.Edges)-len(edges),
		"saved_at", flow.SavedAt)
	return nil
}

func (app *App) callbackContext() context.Context {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.runCtx == nil {
		return context.Background()
	}
	return app.runCtx
}

func (app *App) onError(err error) {
	if app.callback == nil {
		return
	}
	if cbErr := app.callback.OnError(app.callbackContext(), err); cbErr != nil {
		app.logger.Warn("error callback failed", "error", cbErr.Error())
	}
}

func (app *App) onComplete(report simulation.Report) {
	if app.callback == nil {
		return
	}
	if cbErr := app.callback.OnComplete(app.callbackContext(), report); cbErr != nil {
		app.logger.Warn("completion callback failed", "error", cbErr.Error())
	}
}
