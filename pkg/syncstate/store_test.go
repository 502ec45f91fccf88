package syncstate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dd0wney/plcnet/pkg/topology"
)

// storeContract exercises the Store behavior every backend must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Flag(ctx, "ghost"); !errors.Is(err, ErrUnknownPLC) {
		t.Errorf("Flag(unregistered) error = %v, want ErrUnknownPLC", err)
	}
	if err := store.SetFlag(ctx, "ghost", true); !errors.Is(err, ErrUnknownPLC) {
		t.Errorf("SetFlag(unregistered) error = %v, want ErrUnknownPLC", err)
	}

	if err := store.EnsurePLC(ctx, "plc1", false); err != nil {
		t.Fatalf("EnsurePLC error: %v", err)
	}

	flag, err := store.Flag(ctx, "plc1")
	if err != nil {
		t.Fatalf("Flag error: %v", err)
	}
	if flag {
		t.Error("fresh flag should be false")
	}

	if err := store.SetFlag(ctx, "plc1", true); err != nil {
		t.Fatalf("SetFlag error: %v", err)
	}
	flag, err = store.Flag(ctx, "plc1")
	if err != nil {
		t.Fatalf("Flag error: %v", err)
	}
	if !flag {
		t.Error("flag should be true after SetFlag(true)")
	}

	// EnsurePLC keeps the existing row
	if err := store.EnsurePLC(ctx, "plc1", false); err != nil {
		t.Fatalf("EnsurePLC error: %v", err)
	}
	flag, _ = store.Flag(ctx, "plc1")
	if !flag {
		t.Error("EnsurePLC must not overwrite an existing flag")
	}

	clock, err := store.MasterClock(ctx)
	if err != nil {
		t.Fatalf("MasterClock error: %v", err)
	}
	if clock != 0 {
		t.Errorf("initial master clock = %d, want 0", clock)
	}

	// SetFlag must leave the clock untouched
	if err := store.SetFlag(ctx, "plc1", false); err != nil {
		t.Fatal(err)
	}
	clock, _ = store.MasterClock(ctx)
	if clock != 0 {
		t.Errorf("master clock moved to %d after SetFlag", clock)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeContract(t, store)
}

func TestSQLiteStoreContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.sqlite")
	store, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer store.Close()
	storeContract(t, store)
}

func TestSQLiteReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sync.sqlite")

	store, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	if err := store.EnsurePLC(ctx, "plc1", true); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	flag, err := reopened.Flag(ctx, "plc1")
	if err != nil {
		t.Fatalf("Flag after reopen: %v", err)
	}
	if !flag {
		t.Error("flag lost across reopen")
	}
}

func TestMemoryStoreRelease(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.EnsurePLC(ctx, "plc1", false)
	_ = store.EnsurePLC(ctx, "plc2", false)

	_ = store.SetFlag(ctx, "plc1", true)
	if store.AllDone() {
		t.Error("AllDone with one flag pending")
	}
	_ = store.SetFlag(ctx, "plc2", true)
	if !store.AllDone() {
		t.Error("AllDone should hold with every flag set")
	}

	store.Release()
	for _, name := range []string{"plc1", "plc2"} {
		flag, _ := store.Flag(ctx, name)
		if flag {
			t.Errorf("flag %s still set after Release", name)
		}
	}
	clock, _ := store.MasterClock(ctx)
	if clock != 1 {
		t.Errorf("clock = %d after one Release, want 1", clock)
	}
}

func TestOpenDriverSelection(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, topology.StoreConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error: %v", err)
	}
	store.Close()

	if _, err := Open(ctx, topology.StoreConfig{Driver: "etcd"}); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open(etcd) error = %v, want ErrUnknownDriver", err)
	}
}
