package cmd

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingNotifier struct {
	n atomic.Int32
}

func (c *countingNotifier) Notify() { c.n.Add(1) }

func (c *countingNotifier) Subscribers() int { return 1 }

func TestForwardSignalsNotifiesPerSignal(t *testing.T) {
	sigs := make(chan os.Signal, 2)
	n := &countingNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		forwardSignals(ctx, sigs, n)
	}()

	sigs <- syscall.SIGHUP
	sigs <- syscall.SIGHUP
	assert.Eventually(t, func() bool { return n.n.Load() == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwardSignals did not return after cancel")
	}
}

func TestForwardSignalsStopsOnClosedChannel(t *testing.T) {
	sigs := make(chan os.Signal)
	close(sigs)
	forwardSignals(context.Background(), sigs, &countingNotifier{})
}
