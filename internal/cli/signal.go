package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalContext is cancelled by SIGINT or SIGTERM and remembers which one
// arrived, so playback can report why it stopped.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	mu       sync.Mutex
	received os.Signal
}

// NewSignalContext starts watching for termination signals until parent is
// done or Cancel is called.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go sc.watch(signals)
	return sc
}

func (sc *SignalContext) watch(signals chan os.Signal) {
	defer signal.Stop(signals)
	select {
	case sig := <-signals:
		sc.mu.Lock()
		sc.received = sig
		sc.mu.Unlock()
		sc.Cancel()
	case <-sc.Done():
	}
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.received
}
