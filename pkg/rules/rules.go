// Package rules implements the control and attack logic a PLC applies to its
// actuators every iteration. Controls model the legitimate automation logic;
// attacks model adversarial overrides and always run after every control, so
// an active attack has final say over an actuator within an iteration.
package rules

import (
	"github.com/dd0wney/plcnet/pkg/logging"
	"github.com/dd0wney/plcnet/pkg/metrics"
)

// Context is the view of the runtime a rule evaluates against. Reads may
// cross the network (tags owned by peer PLCs); writes only ever touch the
// local store.
type Context interface {
	// ReadTag resolves a tag anywhere in the topology to its current value
	ReadTag(name string) (float64, error)
	// WriteTag sets a locally owned actuator
	WriteTag(name string, value any) error
	// Clock returns the shared master iteration counter
	Clock() (int64, error)
}

// Rule is one control or attack. Evaluate reports whether the rule's trigger
// condition holds right now; Action names the actuators it drives and the
// command it issues when triggered.
type Rule interface {
	Evaluate(ctx Context) (bool, error)
	Action() (actuators []string, command string)
}

// Engine applies an ordered rule set. Later rules targeting the same
// actuator overwrite earlier ones' effect: last write wins, by design.
type Engine struct {
	controls []Rule
	attacks  []Rule
	logger   logging.Logger
	metrics  *metrics.Registry
}

// NewEngine creates an engine over the given rule lists, preserving
// declaration order.
func NewEngine(controls, attacks []Rule, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{controls: controls, attacks: attacks, logger: logger}
}

// SetMetrics attaches a metrics registry; triggered rules are counted by
// kind. Nil leaves the engine unmetered.
func (e *Engine) SetMetrics(reg *metrics.Registry) {
	e.metrics = reg
}

// Apply evaluates every control in declaration order, then every attack in
// declaration order, writing each triggered rule's command to its actuators.
// Evaluations read live values: a rule later in the same call observes
// writes made by earlier rules. The first read or write failure aborts the
// call and propagates to the caller's retry policy.
func (e *Engine) Apply(ctx Context) error {
	for _, rule := range e.controls {
		if err := e.applyOne(ctx, rule, "control"); err != nil {
			return err
		}
	}
	for _, rule := range e.attacks {
		if err := e.applyOne(ctx, rule, "attack"); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applyOne(ctx Context, rule Rule, kind string) error {
	triggered, err := rule.Evaluate(ctx)
	if err != nil {
		return err
	}
	if !triggered {
		return nil
	}
	if e.metrics != nil {
		e.metrics.RecordRuleFired(kind)
	}

	actuators, command := rule.Action()
	for _, actuator := range actuators {
		if err := ctx.WriteTag(actuator, command); err != nil {
			return err
		}
		e.logger.Debug("rule fired",
			logging.TagName(actuator),
			logging.String("command", command))
	}
	return nil
}

// ControlCount returns the number of control rules.
func (e *Engine) ControlCount() int { return len(e.controls) }

// AttackCount returns the number of attack rules.
func (e *Engine) AttackCount() int { return len(e.attacks) }
