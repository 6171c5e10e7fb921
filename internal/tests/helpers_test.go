package tests

import (
	"context"
	"testing"
	"time"

	"github.com/avi3tal/stepflow/internal/format"
	"github.com/avi3tal/stepflow/internal/outcome"
	"github.com/avi3tal/stepflow/internal/simulation"
	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/avi3tal/stepflow/pkg/workflow"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, f format.Format, src string) format.Document {
	t.Helper()
	doc, err := format.Decode(context.Background(), f, []byte(src), "inline."+string(f))
	require.NoError(t, err)
	return doc
}

// byID resolves every node to the status in outcomes, success otherwise.
func byID(outcomes map[string]types.ExecutionStatus) outcome.Decider {
	return func(n types.Node) types.ExecutionStatus {
		if s, ok := outcomes[n.ID]; ok {
			return s
		}
		return types.StatusSuccess
	}
}

func newApp(doc format.Document, decide outcome.Decider, opts ...workflow.AppOption) *workflow.App {
	opts = append([]workflow.AppOption{workflow.WithSchedulerOptions(
		simulation.WithExecutor(outcome.NewSimulator(outcome.WithDelay(0, 0), outcome.WithDecider(decide))),
		simulation.WithStepPause(0),
	)}, opts...)
	return workflow.NewApp(doc.Nodes, doc.Edges, opts...)
}

func invoke(t *testing.T, app *workflow.App) simulation.Report {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	report, err := app.Invoke(ctx)
	require.NoError(t, err)
	return report
}

func finalStatuses(app *workflow.App) map[string]types.ExecutionStatus {
	nodes, _ := app.Editor().Snapshot()
	out := make(map[string]types.ExecutionStatus, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n.Status
	}
	return out
}
