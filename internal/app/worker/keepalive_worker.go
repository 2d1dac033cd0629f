package worker

import (
	"context"
	"log"
	"time"

	"leet2git/internal/common/clock"
)

const DefaultKeepAliveInterval = 20 * time.Second

// KeepAliveStore is the slice of the storage repository the worker writes to.
type KeepAliveStore interface {
	TouchKeepAlive(ctx context.Context, now time.Time) error
}

// KeepAliveWorker stamps a liveness timestamp into local storage on a fixed
// interval until its context is cancelled.
type KeepAliveWorker struct {
	store    KeepAliveStore
	clock    clock.Clock
	interval time.Duration
}

func NewKeepAliveWorker(store KeepAliveStore, clk clock.Clock, interval time.Duration) *KeepAliveWorker {
	if clk == nil {
		clk = clock.Real{}
	}
	if interval <= 0 {
		interval = DefaultKeepAliveInterval
	}
	return &KeepAliveWorker{store: store, clock: clk, interval: interval}
}

// Start blocks until ctx is done.
func (w *KeepAliveWorker) Start(ctx context.Context) {
	log.Printf("INFO: Keep-alive worker started, interval %s", w.interval)
	for {
		if err := w.store.TouchKeepAlive(ctx, w.clock.Now()); err != nil && ctx.Err() == nil {
			log.Printf("ERROR: Failed to write keep-alive stamp: %v", err)
		}
		if err := w.clock.Sleep(ctx, w.interval); err != nil {
			log.Println("INFO: Keep-alive worker stopping...")
			return
		}
	}
}
