// Command geostamp stamps photographs with generated camera and GPS metadata.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnauagrupocobra-tech/geostamp/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
