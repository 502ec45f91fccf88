package tags

import (
	"strings"
	"sync"
)

// Store holds the process variables owned by one PLC.
//
// A single mutex guards every access: the main control loop writes actuator
// state through Set while the snapshot publisher reads through Snapshot, and
// neither may observe a half-applied update. Callers must not hold the lock
// across network calls; Store never does.
type Store struct {
	plc    string
	mu     sync.Mutex
	kinds  map[string]Kind
	values map[Tag]float64
	order  []Tag
}

// NewStore creates a store owning the given sensor and actuator tags,
// all initialized to zero. Tag order follows declaration order, sensors first.
func NewStore(plcName string, sensors, actuators []string) *Store {
	s := &Store{
		plc:    plcName,
		kinds:  make(map[string]Kind),
		values: make(map[Tag]float64),
	}
	for _, name := range sensors {
		if name == "" {
			continue
		}
		s.register(name, Sensor)
	}
	for _, name := range actuators {
		if name == "" {
			continue
		}
		s.register(name, Actuator)
	}
	return s
}

func (s *Store) register(name string, kind Kind) {
	tag := NewTag(name)
	s.kinds[name] = kind
	s.values[tag] = 0
	s.order = append(s.order, tag)
}

// PLC returns the name of the owning PLC.
func (s *Store) PLC() string {
	return s.plc
}

// Owns reports whether this store owns the named tag.
func (s *Store) Owns(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.kinds[name]
	return ok
}

// Kind returns the kind of an owned tag.
func (s *Store) Kind(name string) (Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.kinds[name]
	return k, ok
}

// Get returns the current value of an owned tag.
func (s *Store) Get(tag Tag) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[tag]
	if !ok {
		return 0, NotFoundError("Get", tag.Name, s.plc)
	}
	return v, nil
}

// Set updates the value of an owned tag. The new value is visible to the
// next Get and to the next Snapshot.
//
// Numeric values are stored as-is. Actuators additionally accept the
// symbolic strings "open" and "closed" (case-insensitive), mapped to 1 and 0.
// Any other string fails with ErrInvalidControlValue; a tag not owned by
// this store fails with ErrTagDoesNotExist.
func (s *Store) Set(tag Tag, value any) error {
	v, err := s.decode(tag, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[tag]; !ok {
		return NotFoundError("Set", tag.Name, s.plc)
	}
	s.values[tag] = v
	return nil
}

func (s *Store) decode(tag Tag, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		switch strings.ToLower(v) {
		case "open":
			return Open, nil
		case "closed":
			return Closed, nil
		default:
			return 0, InvalidValueError(tag.Name, s.plc, value)
		}
	default:
		return 0, InvalidValueError(tag.Name, s.plc, value)
	}
}

// Seed replaces the value of an owned tag without symbolic decoding,
// used once during pre-loop initialization.
func (s *Store) Seed(tag Tag, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[tag]; !ok {
		return NotFoundError("Seed", tag.Name, s.plc)
	}
	s.values[tag] = value
	return nil
}

// Snapshot returns the current value of every owned tag in declaration
// order, copied under the lock.
func (s *Store) Snapshot() []TagValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TagValue, 0, len(s.order))
	for _, tag := range s.order {
		out = append(out, TagValue{
			Tag:   tag,
			Kind:  s.kinds[tag.Name],
			Value: s.values[tag],
		})
	}
	return out
}
