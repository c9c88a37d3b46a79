package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownContext returns a context that cancels on the first SIGINT or
// SIGTERM. Cancellation also restores default signal delivery, so a second
// signal kills the process outright; a stuck shutdown can still be
// interrupted from the terminal.
func ShutdownContext() context.Context {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx
}
