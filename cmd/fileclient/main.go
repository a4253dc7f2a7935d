package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kal997/file-interest-server/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cmd := cli.NewRootCommand()
	cmd.SetContext(ctx)
	code := cli.Execute(cmd)

	stop()
	os.Exit(code)
}
