// cmd/marketscan/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/marketscan/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	// Cancel the run on interrupt so the browser session is closed before exit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
	}()

	cli.Execute(ctx)
}
