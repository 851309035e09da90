package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oakwood-commons/petsview/pkg/logger"
)

type notifier interface {
	Notify()
	Subscribers() int
}

// watchHangup turns SIGHUP into a location notification, which refreshes the
// view. The returned func stops watching.
func watchHangup(ctx context.Context, loc notifier) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		forwardSignals(ctx, sigs, loc)
	}()
	return func() {
		signal.Stop(sigs)
		cancel()
		<-done
	}
}

func forwardSignals(ctx context.Context, sigs <-chan os.Signal, loc notifier) {
	lgr := logger.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sigs:
			if !ok {
				return
			}
			lgr.V(1).Info("hangup received, notifying location", "subscribers", loc.Subscribers())
			loc.Notify()
		}
	}
}
