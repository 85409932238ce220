package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/neeleshseerapu/termagent/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, cleanup := cli.NewRootCmd(cli.Options{Verbose: isVerbose()})
	err := root.ExecuteContext(ctx)
	if closeErr := cleanup(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("TERMAGENT_DEBUG"), "1") || strings.EqualFold(os.Getenv("TERMAGENT_DEBUG"), "true")
}
