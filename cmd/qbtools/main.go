package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/florianilch/qbtools/cmd/qbtools/commands"
	"github.com/florianilch/qbtools/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx, os.Args)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if guidance := app.Guidance(err); guidance != "" {
			fmt.Fprintln(os.Stderr, guidance)
		}
	}
	os.Exit(app.ExitCode(err))
}
