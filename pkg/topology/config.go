package topology

import "time"

// Topology describes the whole testbed: every PLC, its tags and rules, and
// the shared state store the physical-process simulator coordinates through.
// Loaded once at startup; never hot-reloaded.
type Topology struct {
	LogLevel string          `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Store    StoreConfig     `yaml:"store"`
	PLCs     []PLCDescriptor `yaml:"plcs" validate:"required,min=1,dive"`
}

// StoreConfig selects the shared sync-state store backend.
type StoreConfig struct {
	// Driver is one of "sqlite", "postgres", "memory"
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite postgres memory"`
	// Path is the database file path for the sqlite driver
	Path string `yaml:"path"`
	// URL is the connection string for the postgres driver
	URL string `yaml:"url"`
}

// PLCDescriptor is the static configuration of one PLC.
type PLCDescriptor struct {
	Name          string   `yaml:"name" validate:"required"`
	LocalAddress  string   `yaml:"local_address" validate:"required"`
	PublicAddress string   `yaml:"public_address" validate:"required"`
	Sensors       []string `yaml:"sensors"`
	Actuators     []string `yaml:"actuators"`

	// InitialValues seeds owned tags before the first iteration
	InitialValues map[string]float64 `yaml:"initial_values"`

	Controls []ControlConfig `yaml:"controls" validate:"dive"`
	Attacks  []AttackConfig  `yaml:"attacks" validate:"dive"`
}

// ControlConfig is one control rule as written in the topology file.
type ControlConfig struct {
	Type     string  `yaml:"type" validate:"required"`
	Actuator string  `yaml:"actuator" validate:"required"`
	Action   string  `yaml:"action" validate:"required,oneof=open closed"`
	Dependant string `yaml:"dependant"`
	Value    float64 `yaml:"value"`
}

// AttackConfig is one attack rule as written in the topology file.
type AttackConfig struct {
	Name       string   `yaml:"name" validate:"required"`
	Type       string   `yaml:"type" validate:"required"`
	Actuators  []string `yaml:"actuators" validate:"required,min=1"`
	Command    string   `yaml:"command" validate:"required,oneof=open closed"`
	Sensor     string   `yaml:"sensor"`
	Value      float64  `yaml:"value"`
	Start      int64    `yaml:"start"`
	End        int64    `yaml:"end"`
	LowerValue float64  `yaml:"lower_value"`
	UpperValue float64  `yaml:"upper_value"`
}

// RuntimeConfig carries the tunables of one PLC process.
type RuntimeConfig struct {
	// PollInterval is the barrier busy-poll sleep (default: 10ms)
	PollInterval time.Duration
	// BroadcastInterval is the sensor snapshot publish cadence (default: 50ms)
	BroadcastInterval time.Duration
	// RetryCeiling is the consecutive read-failure limit before fatal abort (default: 100)
	RetryCeiling int
	// OutputDir is where the telemetry artifact is written on shutdown
	OutputDir string
	// TestBreak stops the main loop after one iteration (unit testing only)
	TestBreak bool
}

// DefaultRuntimeConfig returns a safe default configuration
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		PollInterval:      10 * time.Millisecond,
		BroadcastInterval: 50 * time.Millisecond,
		RetryCeiling:      100,
		OutputDir:         "output",
	}
}

// DeclaresTag reports whether the descriptor declares the named tag as a
// sensor or an actuator.
func (d *PLCDescriptor) DeclaresTag(name string) bool {
	for _, s := range d.Sensors {
		if s == name {
			return true
		}
	}
	for _, a := range d.Actuators {
		if a == name {
			return true
		}
	}
	return false
}

// PrimarySensor returns the PLC's first declared sensor, the one its
// telemetry log and broadcast loop track. Empty if the PLC owns no sensors.
func (d *PLCDescriptor) PrimarySensor() string {
	if len(d.Sensors) == 0 {
		return ""
	}
	return d.Sensors[0]
}

// Owner returns the first descriptor other than self (by index) that
// declares the named tag, scanning in topology order.
func (t *Topology) Owner(name string, selfIndex int) (*PLCDescriptor, bool) {
	for i := range t.PLCs {
		if i == selfIndex {
			continue
		}
		if t.PLCs[i].DeclaresTag(name) {
			return &t.PLCs[i], true
		}
	}
	return nil, false
}
