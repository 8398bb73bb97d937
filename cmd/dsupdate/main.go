// Package main boots the dsupdate command-line tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairyhunter13/dataware-update/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	root.SetContext(ctx)
	if err := cli.Execute(root); err != nil {
		stop()
		os.Exit(1)
	}
}
