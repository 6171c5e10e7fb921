package main

import (
	"context"
	"fmt"
	"time"

	"github.com/avi3tal/stepflow/internal/outcome"
	"github.com/avi3tal/stepflow/internal/simulation"
	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/avi3tal/stepflow/pkg/workflow"
)

func main() {
	wf := workflow.NewBuilder("Parallel-Join-Demo")

	// Both notifications run before the scoring step, which waits for the two of them.
	err := wf.Start("Inscription").
		ThenAll(
			workflow.Email("welcome-mail", "Email de bienvenue", "Bienvenue parmi nous"),
			workflow.SMS("welcome-sms", "SMS de bienvenue", "Votre compte est actif"),
		).
		Join(workflow.Custom("scoring", "Scoring", 90)).
		End(workflow.End("end", "Fin"))
	if err != nil {
		panic(fmt.Sprintf("Failed building flow: %v", err))
	}

	app, err := wf.Compile(workflow.WithSchedulerOptions(
		simulation.WithExecutor(outcome.NewSimulator(outcome.WithDelay(50*time.Millisecond, 150*time.Millisecond))),
		simulation.WithStepPause(20*time.Millisecond),
		simulation.WithLogListener(func(e types.LogEntry) {
			fmt.Printf("%s %-20s %s\n", e.Timestamp.Format("15:04:05.000"), e.NodeName, e.Status.Label())
		}),
	))
	if err != nil {
		panic(fmt.Sprintf("Failed creating app: %v", err))
	}

	report, err := app.Invoke(context.Background())
	if err != nil {
		fmt.Println("Invoke error:", err)
		return
	}
	fmt.Println("Workflow done:", report)
}
