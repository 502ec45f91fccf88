package rules

import (
	"fmt"

	"github.com/dd0wney/plcnet/pkg/topology"
)

// ControlsFromConfig builds the control rule list for one PLC descriptor,
// preserving declaration order.
func ControlsFromConfig(configs []topology.ControlConfig) ([]Rule, error) {
	out := make([]Rule, 0, len(configs))
	for i, c := range configs {
		switch c.Type {
		case "above":
			out = append(out, &AboveControl{
				Actuator:  c.Actuator,
				Command:   c.Action,
				Dependant: c.Dependant,
				Threshold: c.Value,
			})
		case "below":
			out = append(out, &BelowControl{
				Actuator:  c.Actuator,
				Command:   c.Action,
				Dependant: c.Dependant,
				Threshold: c.Value,
			})
		case "time":
			out = append(out, &TimeControl{
				Actuator: c.Actuator,
				Command:  c.Action,
				At:       int64(c.Value),
			})
		default:
			return nil, fmt.Errorf("control %d: unknown type %q", i, c.Type)
		}
	}
	return out, nil
}

// AttacksFromConfig builds the attack rule list for one PLC descriptor,
// preserving declaration order.
func AttacksFromConfig(configs []topology.AttackConfig) ([]Rule, error) {
	out := make([]Rule, 0, len(configs))
	for _, a := range configs {
		switch a.Type {
		case "time":
			out = append(out, &TimeAttack{
				Name:      a.Name,
				Actuators: a.Actuators,
				Command:   a.Command,
				Start:     a.Start,
				End:       a.End,
			})
		case "above":
			out = append(out, &TriggerAboveAttack{
				Name:      a.Name,
				Actuators: a.Actuators,
				Command:   a.Command,
				Sensor:    a.Sensor,
				Threshold: a.Value,
			})
		case "below":
			out = append(out, &TriggerBelowAttack{
				Name:      a.Name,
				Actuators: a.Actuators,
				Command:   a.Command,
				Sensor:    a.Sensor,
				Threshold: a.Value,
			})
		case "between":
			out = append(out, &TriggerBetweenAttack{
				Name:      a.Name,
				Actuators: a.Actuators,
				Command:   a.Command,
				Sensor:    a.Sensor,
				Lower:     a.LowerValue,
				Upper:     a.UpperValue,
			})
		default:
			return nil, fmt.Errorf("attack %s: unknown type %q", a.Name, a.Type)
		}
	}
	return out, nil
}
