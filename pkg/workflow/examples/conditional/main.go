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
	wf := workflow.NewBuilder("Cart-Reminder-Demo")

	// The email succeeds 70% of the time: a success sends a follow-up sms,
	// a failure ends the flow right away.
	branches := wf.Start("Panier abandonné").
		Then(workflow.Email("mail", "Relance", "Votre panier vous attend")).
		ThenIf(
			workflow.SMS("sms", "Rappel SMS", "Plus que 24h pour finaliser votre commande"),
			workflow.End("lost", "Client perdu"),
		)
	if err := branches.Success.End(workflow.End("won", "Commande finalisée")); err != nil {
		panic(fmt.Sprintf("Failed building flow: %v", err))
	}

	app, err := wf.Compile(workflow.WithSchedulerOptions(
		simulation.WithExecutor(outcome.NewSimulator(outcome.WithDelay(100*time.Millisecond, 300*time.Millisecond))),
		simulation.WithStepPause(50*time.Millisecond),
	))
	if err != nil {
		panic(fmt.Sprintf("Failed creating app: %v", err))
	}

	report, err := app.Invoke(context.Background())
	if err != nil {
		fmt.Println("Invoke error:", err)
		return
	}

	for _, entry := range app.Log() {
		if entry.Status.IsTerminal() {
			fmt.Printf("%-20s %s\n", entry.NodeName, entry.Status.Label())
		}
	}
	fmt.Println(report)
	fmt.Println("Email delivered:", report.Statuses["mail"] == types.StatusSuccess, "- skipped:", report.Pending)
}
