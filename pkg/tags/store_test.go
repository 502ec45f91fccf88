package tags

import (
	"sync"
	"testing"
)

func newTestStore() *Store {
	return NewStore("plc1", []string{"T1", "T2"}, []string{"PMP1", "V1"})
}

func TestStoreGetSet(t *testing.T) {
	s := newTestStore()

	if err := s.Set(NewTag("T1"), 12.5); err != nil {
		t.Fatalf("Set(T1) error: %v", err)
	}

	v, err := s.Get(NewTag("T1"))
	if err != nil {
		t.Fatalf("Get(T1) error: %v", err)
	}
	if v != 12.5 {
		t.Errorf("Get(T1) = %v, want 12.5", v)
	}
}

func TestStoreSetUnownedTag(t *testing.T) {
	s := newTestStore()

	tests := []string{"T9", "PMP2", ""}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			err := s.Set(NewTag(name), 1.0)
			if !IsNotFound(err) {
				t.Errorf("Set(%q) error = %v, want ErrTagDoesNotExist", name, err)
			}
		})
	}
}

func TestStoreSymbolicValues(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    float64
		wantErr bool
	}{
		{"open lowercase", "open", Open, false},
		{"closed lowercase", "closed", Closed, false},
		{"open uppercase", "OPEN", Open, false},
		{"closed mixed case", "Closed", Closed, false},
		{"numeric one", 1, Open, false},
		{"numeric zero", 0.0, Closed, false},
		{"garbage string", "ajar", 0, true},
		{"empty string", "", 0, true},
		{"unsupported type", struct{}{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			err := s.Set(NewTag("PMP1"), tt.value)
			if tt.wantErr {
				if !IsInvalidValue(err) {
					t.Fatalf("Set(PMP1, %v) error = %v, want ErrInvalidControlValue", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(PMP1, %v) error: %v", tt.value, err)
			}
			got, err := s.Get(NewTag("PMP1"))
			if err != nil {
				t.Fatalf("Get(PMP1) error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Get(PMP1) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreSnapshotOrder(t *testing.T) {
	s := newTestStore()
	if err := s.Set(NewTag("T2"), 3.25); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	wantOrder := []string{"T1", "T2", "PMP1", "V1"}
	if len(snap) != len(wantOrder) {
		t.Fatalf("Snapshot length = %d, want %d", len(snap), len(wantOrder))
	}
	for i, tv := range snap {
		if tv.Tag.Name != wantOrder[i] {
			t.Errorf("Snapshot[%d] = %s, want %s", i, tv.Tag.Name, wantOrder[i])
		}
	}
	if snap[1].Value != 3.25 {
		t.Errorf("Snapshot T2 value = %v, want 3.25", snap[1].Value)
	}
	if snap[0].Kind != Sensor || snap[2].Kind != Actuator {
		t.Error("Snapshot kinds do not match declaration")
	}
}

func TestStoreSeed(t *testing.T) {
	s := newTestStore()
	if err := s.Seed(NewTag("T1"), 42.0); err != nil {
		t.Fatalf("Seed error: %v", err)
	}
	v, _ := s.Get(NewTag("T1"))
	if v != 42.0 {
		t.Errorf("Get after Seed = %v, want 42.0", v)
	}

	if err := s.Seed(NewTag("NOPE"), 1.0); !IsNotFound(err) {
		t.Errorf("Seed(unowned) error = %v, want ErrTagDoesNotExist", err)
	}
}

// Concurrent writers and snapshot readers must never observe a torn update.
// Run with -race to make this meaningful.
func TestStoreConcurrentSnapshot(t *testing.T) {
	s := newTestStore()
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = s.Set(NewTag("T1"), float64(i))
			_ = s.Set(NewTag("PMP1"), i%2)
		}
		close(done)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				snap := s.Snapshot()
				if len(snap) != 4 {
					t.Errorf("Snapshot length = %d during concurrent writes", len(snap))
					return
				}
			}
		}
	}()

	wg.Wait()
}
