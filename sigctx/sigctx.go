// Package sigctx provides a context that is canceled on SIGINT or SIGTERM.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// New returns a context that is canceled when the process receives an
// interrupt or terminate signal. A second signal exits immediately.
func New() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Warn().Stringer("signal", sig).Msg("shutting down; signal again to force")
		cancel()
		<-sigs
		os.Exit(1)
	}()
	return ctx
}
