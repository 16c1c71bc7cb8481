package rasteroid

import (
	"context"
	"os/signal"
)

// SetupSignalHandler returns a context that is cancelled when the process
// receives an interrupt, a termination request or, on unix, a hangup or quit.
// Pass it to the video encoders; call stop to release the handlers.
func SetupSignalHandler(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
