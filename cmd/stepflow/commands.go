package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/avi3tal/stepflow/internal/format"
	"github.com/avi3tal/stepflow/internal/graph"
	"github.com/avi3tal/stepflow/internal/outcome"
	"github.com/avi3tal/stepflow/internal/simulation"
	"github.com/avi3tal/stepflow/internal/store"
	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/avi3tal/stepflow/pkg/workflow"
)

var errInvalidWorkflow = errors.New("invalid workflow")

func (c *cli) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check the structure of a workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := format.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := graph.Validate(doc.Nodes)
			if !result.IsValid {
				fmt.Fprintf(c.out, "❌ %s\n", result.Error)
				return errInvalidWorkflow
			}
			fmt.Fprintf(c.out, "✅ %s: %d steps, %d edges\n", args[0], len(doc.Nodes), len(doc.Edges))
			c.warnings(doc)
			return nil
		},
	}
}

// warnings reports steps a run can never reach.
func (c *cli) warnings(doc format.Document) {
	g := graph.New(doc.Nodes, doc.Edges)
	if cycle := g.FindCycle(); len(cycle) > 0 {
		fmt.Fprintf(c.out, "⚠️  cycle %s -> %s: these steps wait on each other and will not run\n",
			strings.Join(cycle, " -> "), cycle[0])
	}

	start, ok := graph.StartNode(g.Nodes())
	if !ok {
		return
	}
	reachable := g.Reachable(start.ID)
	for _, n := range g.Nodes() {
		if !reachable[n.ID] {
			fmt.Fprintf(c.out, "⚠️  %s (%s) is not reachable from the start step\n", n.Name, n.ID)
		}
	}
}

func (c *cli) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print the steps and edges of a workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := format.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			graph.New(doc.Nodes, doc.Edges).PrintGraph(c.out)
			return nil
		},
	}
}

func (c *cli) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Simulate a workflow and stream its execution log; Ctrl-C stops the run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := format.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return c.simulate(ctx, doc)
		},
	}

	flags := cmd.Flags()
	flags.Int64("seed", 0, "seed for reproducible outcomes (0 picks one per run)")
	flags.Duration("pause", 0, "pause between two steps")
	c.bind(flags.Lookup("seed"), "simulation.seed")
	c.bind(flags.Lookup("pause"), "simulation.step_pause")
	return cmd
}

func (c *cli) simulate(ctx context.Context, doc format.Document) error {
	sim := c.cfg.Simulation
	simOpts := []outcome.Option{outcome.WithDelay(sim.MinDelay, sim.MaxDelay)}
	if sim.Seed != 0 {
		simOpts = append(simOpts, outcome.WithSeed(sim.Seed))
	}

	byID := make(map[string]types.Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		byID[n.ID] = n
	}

	app := workflow.NewApp(doc.Nodes, doc.Edges,
		workflow.WithLogger(c.logger),
		workflow.WithSchedulerOptions(
			simulation.WithExecutor(outcome.NewSimulator(simOpts...)),
			simulation.WithStepPause(sim.StepPause),
			simulation.WithLogListener(func(e types.LogEntry) {
				c.printEntry(byID[e.NodeID], e)
			}),
		),
	)

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(c.out, "❌ %s\n", graph.Validate(doc.Nodes).Error)
		return err
	}

	// the run stops on its own when ctx is cancelled
	report, err := app.Wait(context.Background())
	fmt.Fprintf(c.out, "\n%s\n", report)
	if len(report.Pending) > 0 {
		fmt.Fprintf(c.out, "not reached: %s\n", strings.Join(report.Pending, ", "))
	}
	return err
}

func (c *cli) printEntry(node types.Node, e types.LogEntry) {
	line := fmt.Sprintf("%s  %s %-24s %s", e.Timestamp.Format("15:04:05.000"), node.Type.Icon(), e.NodeName, e.Status.Label())
	if e.Duration != nil {
		line += fmt.Sprintf(" (%s)", e.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(c.out, line)
	if e.Message != "" {
		fmt.Fprintf(c.out, "              ↳ %s\n", e.Message)
	}
}

func (c *cli) openStore() (*store.BadgerStore, error) {
	if err := os.MkdirAll(c.cfg.Store.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create store dir")
	}
	return store.Open(c.cfg.Store.Dir, c.logger)
}

func (c *cli) saveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <file>",
		Short: "Save a workflow file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := format.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s, err := c.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			app := workflow.NewApp(doc.Nodes, doc.Edges, workflow.WithStore(s), workflow.WithLogger(c.logger))
			if err := app.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "saved %d steps and %d edges to %s\n", len(doc.Nodes), len(doc.Edges), c.cfg.Store.Dir)
			return nil
		},
	}
}

func (c *cli) loadCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Print the saved workflow, or write it to a file with --out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			app := workflow.NewApp(nil, nil, workflow.WithStore(s), workflow.WithLogger(c.logger))
			if err := app.Load(cmd.Context()); err != nil {
				return err
			}
			nodes, edges := app.Editor().Snapshot()

			if output == "" {
				graph.New(nodes, edges).PrintGraph(c.out)
			} else if err := format.WriteFile(output, format.Document{Nodes: nodes, Edges: edges}); err != nil {
				return err
			}

			if saved, err := s.LastSaved(cmd.Context()); err == nil {
				fmt.Fprintf(c.out, "last saved %s\n", saved.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "write the workflow to this .json or .hcl file")
	return cmd
}
