// Package barrier implements the PLC side of the testbed's lock-step
// iteration protocol. It is a cooperative barrier, not a lock: the PLC
// signals "done" by raising its flag in the shared store, and the external
// physical-process simulator releases the next iteration by clearing every
// flag and advancing the master clock.
package barrier

import (
	"context"
	"time"

	"github.com/dd0wney/plcnet/pkg/syncstate"
)

// DefaultPollInterval is the fixed sleep between flag polls.
const DefaultPollInterval = 10 * time.Millisecond

// Barrier coordinates one PLC's iteration boundary through a sync store.
type Barrier struct {
	store        syncstate.Store
	plcName      string
	pollInterval time.Duration
}

// New creates a barrier for the named PLC. A non-positive pollInterval
// falls back to DefaultPollInterval.
func New(store syncstate.Store, plcName string, pollInterval time.Duration) *Barrier {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Barrier{
		store:        store,
		plcName:      plcName,
		pollInterval: pollInterval,
	}
}

// WaitForRelease blocks until the simulator has cleared this PLC's flag,
// granting permission to run the next iteration. Suspension is bounded
// polling; there is no push wakeup. Returns early with the context's error
// on cancellation.
func (b *Barrier) WaitForRelease(ctx context.Context) error {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		flag, err := b.store.Flag(ctx, b.plcName)
		if err != nil {
			return err
		}
		if !flag {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SignalDone raises this PLC's flag, telling the simulator the iteration's
// work is finished. Does not block on the simulator.
func (b *Barrier) SignalDone(ctx context.Context) error {
	return b.store.SetFlag(ctx, b.plcName, true)
}

// MasterClock returns the shared iteration counter driving time-triggered
// rules.
func (b *Barrier) MasterClock(ctx context.Context) (int64, error) {
	return b.store.MasterClock(ctx)
}
