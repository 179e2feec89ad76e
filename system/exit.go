package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithOsSignal returns a context that is cancelled on SIGINT or SIGTERM.
func WithOsSignal(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
