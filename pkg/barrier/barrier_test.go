package barrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dd0wney/plcnet/pkg/syncstate"
)

func newTestBarrier(t *testing.T) (*Barrier, *syncstate.MemoryStore) {
	t.Helper()
	store := syncstate.NewMemoryStore()
	if err := store.EnsurePLC(context.Background(), "plc1", false); err != nil {
		t.Fatal(err)
	}
	return New(store, "plc1", time.Millisecond), store
}

func TestWaitReturnsWhenFlagClear(t *testing.T) {
	b, _ := newTestBarrier(t)

	// Flag starts clear: the PLC is already released
	if err := b.WaitForRelease(context.Background()); err != nil {
		t.Fatalf("WaitForRelease error: %v", err)
	}
}

func TestWaitBlocksUntilRelease(t *testing.T) {
	b, store := newTestBarrier(t)
	ctx := context.Background()

	if err := b.SignalDone(ctx); err != nil {
		t.Fatal(err)
	}

	released := make(chan error, 1)
	go func() {
		released <- b.WaitForRelease(ctx)
	}()

	// The flag is raised: the wait must not return yet
	select {
	case <-released:
		t.Fatal("WaitForRelease returned before the simulator released")
	case <-time.After(20 * time.Millisecond):
	}

	store.Release()

	select {
	case err := <-released:
		if err != nil {
			t.Fatalf("WaitForRelease error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForRelease did not observe the release")
	}
}

func TestSignalDoneLeavesClockUntouched(t *testing.T) {
	b, _ := newTestBarrier(t)
	ctx := context.Background()

	before, err := b.MasterClock(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.SignalDone(ctx); err != nil {
		t.Fatalf("SignalDone error: %v", err)
	}
	after, err := b.MasterClock(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Errorf("master clock moved from %d to %d on SignalDone", before, after)
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	b, _ := newTestBarrier(t)
	ctx, cancel := context.WithCancel(context.Background())

	if err := b.SignalDone(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- b.WaitForRelease(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WaitForRelease error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForRelease ignored cancellation")
	}
}

func TestClockAdvancesWithReleases(t *testing.T) {
	b, store := newTestBarrier(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := b.SignalDone(ctx); err != nil {
			t.Fatal(err)
		}
		store.Release()
		if err := b.WaitForRelease(ctx); err != nil {
			t.Fatal(err)
		}
		clock, err := b.MasterClock(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if clock != int64(i) {
			t.Errorf("clock = %d after %d releases", clock, i)
		}
	}
}
