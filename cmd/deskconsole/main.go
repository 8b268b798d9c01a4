// deskconsole runs and inspects scripted settings sessions.
//
// Usage:
//
//	deskconsole run <scenario.yaml> [--journal console.db]
//	deskconsole test <scenarios-dir> [--filter glob] [--update]
//	deskconsole trace --db console.db [--session id]
//	deskconsole validate <scenario-file-or-dir>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/deskconsole/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
