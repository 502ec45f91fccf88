package topology

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validation errors
var (
	ErrDuplicatePLCName  = errors.New("duplicate plc name")
	ErrUnknownRuleType   = errors.New("unknown rule type")
	ErrMissingDependant  = errors.New("trigger rule missing dependant tag")
	ErrBadAttackWindow   = errors.New("attack window start exceeds end")
	ErrBadAttackBounds   = errors.New("attack lower bound exceeds upper bound")
	ErrMissingStorePath  = errors.New("sqlite store requires a path")
	ErrMissingStoreURL   = errors.New("postgres store requires a url")
)

// validate is a singleton validator instance
var validate = validator.New()

// Validate checks structural constraints the yaml schema cannot express.
func (t *Topology) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("topology validation failed: %w", err)
	}

	switch t.Store.Driver {
	case "sqlite":
		if t.Store.Path == "" {
			return ErrMissingStorePath
		}
	case "postgres":
		if t.Store.URL == "" {
			return ErrMissingStoreURL
		}
	}

	seen := make(map[string]bool, len(t.PLCs))
	for i := range t.PLCs {
		plc := &t.PLCs[i]
		if seen[plc.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicatePLCName, plc.Name)
		}
		seen[plc.Name] = true

		for j := range plc.Controls {
			if err := validateControl(&plc.Controls[j]); err != nil {
				return fmt.Errorf("plc %s control %d: %w", plc.Name, j, err)
			}
		}
		for j := range plc.Attacks {
			if err := validateAttack(&plc.Attacks[j]); err != nil {
				return fmt.Errorf("plc %s attack %s: %w", plc.Name, plc.Attacks[j].Name, err)
			}
		}
	}
	return nil
}

func validateControl(c *ControlConfig) error {
	switch c.Type {
	case "above", "below":
		if c.Dependant == "" {
			return ErrMissingDependant
		}
	case "time":
		// No dependant tag; Value is the trigger iteration
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRuleType, c.Type)
	}
	return nil
}

func validateAttack(a *AttackConfig) error {
	switch a.Type {
	case "time":
		if a.Start > a.End {
			return ErrBadAttackWindow
		}
	case "above", "below":
		if a.Sensor == "" {
			return ErrMissingDependant
		}
	case "between":
		if a.Sensor == "" {
			return ErrMissingDependant
		}
		if a.LowerValue > a.UpperValue {
			return ErrBadAttackBounds
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRuleType, a.Type)
	}
	return nil
}
