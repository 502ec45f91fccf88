package topology

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a topology file.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates topology YAML.
func Parse(data []byte) (*Topology, error) {
	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("failed to parse topology: %w", err)
	}

	topo.normalize()

	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return &topo, nil
}

// normalize applies defaults the file may omit: empty tag lists, lowercase
// rule types, default store driver.
func (t *Topology) normalize() {
	if t.LogLevel == "" {
		t.LogLevel = "info"
	}
	if t.Store.Driver == "" {
		t.Store.Driver = "sqlite"
	}
	for i := range t.PLCs {
		plc := &t.PLCs[i]
		if plc.Sensors == nil {
			plc.Sensors = []string{}
		}
		if plc.Actuators == nil {
			plc.Actuators = []string{}
		}
		for j := range plc.Controls {
			plc.Controls[j].Type = strings.ToLower(plc.Controls[j].Type)
			plc.Controls[j].Action = strings.ToLower(plc.Controls[j].Action)
		}
		for j := range plc.Attacks {
			plc.Attacks[j].Type = strings.ToLower(plc.Attacks[j].Type)
			plc.Attacks[j].Command = strings.ToLower(plc.Attacks[j].Command)
		}
	}
}
