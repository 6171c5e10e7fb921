// Command stepflow validates, prints, simulates and stores notification workflows.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

func main() {
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run builds the command tree and executes it; split out of main for tests.
func run(ctx context.Context, out, errOut io.Writer, args []string) error {
	root := newRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
