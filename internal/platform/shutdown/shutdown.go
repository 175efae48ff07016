package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/chalkboard/internal/platform/logger"
)

var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// NotifyContext is cancelled on the first of Signals, logging which one
// arrived. The returned stop releases the signal handler.
func NotifyContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, Signals...)
	go func() {
		select {
		case sig := <-ch:
			log.Info("shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(ch)
		cancel()
	}
}
