// Package syncstate provides the shared coordination store that PLC
// processes and the physical-process simulator rendezvous through.
//
// The store holds one boolean flag per PLC plus a singleton master clock.
// Writer discipline is part of the contract, not enforced here: a PLC writes
// only its own flag (0→1, "iteration done"); only the simulator resets flags
// (1→0, "released") and advances the clock.
package syncstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/plcnet/pkg/topology"
)

// Common sentinel errors
var (
	ErrUnknownPLC    = errors.New("plc not registered in sync table")
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Store is the coordination state contract. Backends must make each flag
// write individually durable before returning (commit per call).
type Store interface {
	// Flag returns the named PLC's sync flag
	Flag(ctx context.Context, name string) (bool, error)
	// SetFlag writes the named PLC's sync flag and commits immediately
	SetFlag(ctx context.Context, name string, flag bool) error
	// MasterClock returns the shared iteration counter
	MasterClock(ctx context.Context) (int64, error)
	// EnsurePLC registers a PLC's flag row with the given initial value,
	// keeping the existing row if one is already present
	EnsurePLC(ctx context.Context, name string, flag bool) error
	// Close releases the backend connection
	Close() error
}

// Open creates a store from topology configuration.
func Open(ctx context.Context, cfg topology.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path)
	case "postgres":
		return OpenPostgres(ctx, cfg.URL)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
