package syncstate

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, used for tests and single-process
// topologies. It also exposes the simulator's side of the protocol so tests
// can drive the release cycle.
type MemoryStore struct {
	mu    sync.Mutex
	flags map[string]bool
	clock int64
}

// NewMemoryStore creates an empty in-memory store with the clock at zero.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: make(map[string]bool)}
}

func (m *MemoryStore) Flag(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flag, ok := m.flags[name]
	if !ok {
		return false, ErrUnknownPLC
	}
	return flag, nil
}

func (m *MemoryStore) SetFlag(ctx context.Context, name string, flag bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flags[name]; !ok {
		return ErrUnknownPLC
	}
	m.flags[name] = flag
	return nil
}

func (m *MemoryStore) MasterClock(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock, nil
}

func (m *MemoryStore) EnsurePLC(ctx context.Context, name string, flag bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flags[name]; !ok {
		m.flags[name] = flag
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Release is the simulator's side of the barrier: reset every flag to 0 and
// advance the clock by one. Tests use it to emulate iteration boundaries.
func (m *MemoryStore) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.flags {
		m.flags[name] = false
	}
	m.clock++
}

// AllDone reports whether every registered PLC has signalled its iteration.
func (m *MemoryStore) AllDone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, flag := range m.flags {
		if !flag {
			return false
		}
	}
	return true
}
