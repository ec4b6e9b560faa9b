package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/jpfielding/dcmrmel.go/cmd/dcmrmel/cmd"
	"github.com/jpfielding/dcmrmel.go/pkg/logging"
)

var (
	Version string = "dev"
)

func main() {
	// register sigterm so a ctrl-c stops the run between files
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()

	slog.SetDefault(logging.Logger(os.Stderr, false, slog.LevelInfo))
	ctx = logging.AppendCtx(ctx,
		slog.Group("dcmrmel",
			slog.String("version", Version),
			slog.String("run", uuid.NewString()),
		))

	if err := cmd.NewRoot(ctx, Version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
