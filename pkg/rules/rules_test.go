package rules

import (
	"errors"
	"testing"

	"github.com/dd0wney/plcnet/pkg/logging"
	"github.com/dd0wney/plcnet/pkg/topology"
)

// fakeContext backs rule evaluation with plain maps and mirrors the tag
// store's open/closed mapping on writes.
type fakeContext struct {
	values  map[string]float64
	clock   int64
	readErr error
}

func newFakeContext(clock int64) *fakeContext {
	return &fakeContext{values: make(map[string]float64), clock: clock}
}

func (f *fakeContext) ReadTag(name string) (float64, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	v, ok := f.values[name]
	if !ok {
		return 0, errors.New("tag not found: " + name)
	}
	return v, nil
}

func (f *fakeContext) WriteTag(name string, value any) error {
	switch v := value.(type) {
	case string:
		if v == "open" {
			f.values[name] = 1
		} else {
			f.values[name] = 0
		}
	case float64:
		f.values[name] = v
	case int:
		f.values[name] = float64(v)
	}
	return nil
}

func (f *fakeContext) Clock() (int64, error) {
	return f.clock, nil
}

func TestAttackOverridesControl(t *testing.T) {
	// A control and an attack both target PMP1 and both trigger; the attack
	// runs last and must win.
	ctx := newFakeContext(0)
	ctx.values["T1"] = 8.0

	controls := []Rule{
		&BelowControl{Actuator: "PMP1", Command: "open", Dependant: "T1", Threshold: 10},
	}
	attacks := []Rule{
		&TriggerBelowAttack{Name: "starve", Actuators: []string{"PMP1"}, Command: "closed", Sensor: "T1", Threshold: 10},
	}

	engine := NewEngine(controls, attacks, logging.NewNopLogger())
	if err := engine.Apply(ctx); err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	if ctx.values["PMP1"] != 0 {
		t.Errorf("PMP1 = %v, want 0 (attack command)", ctx.values["PMP1"])
	}
}

func TestLastControlWins(t *testing.T) {
	ctx := newFakeContext(0)
	ctx.values["T1"] = 8.0

	controls := []Rule{
		&BelowControl{Actuator: "PMP1", Command: "open", Dependant: "T1", Threshold: 10},
		&BelowControl{Actuator: "PMP1", Command: "closed", Dependant: "T1", Threshold: 10},
	}

	engine := NewEngine(controls, nil, nil)
	if err := engine.Apply(ctx); err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	if ctx.values["PMP1"] != 0 {
		t.Errorf("PMP1 = %v, want 0 (second control's action)", ctx.values["PMP1"])
	}
}

func TestTimeAttackWindow(t *testing.T) {
	attack := &TimeAttack{Name: "w", Actuators: []string{"PMP1"}, Command: "open", Start: 5, End: 10}

	tests := []struct {
		clock int64
		want  bool
	}{
		{4, false},
		{5, true},
		{7, true},
		{10, true},
		{11, false},
	}

	for _, tt := range tests {
		ctx := newFakeContext(tt.clock)
		got, err := attack.Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate error at clock %d: %v", tt.clock, err)
		}
		if got != tt.want {
			t.Errorf("active at clock %d = %v, want %v", tt.clock, got, tt.want)
		}
	}
}

func TestBelowControlScenario(t *testing.T) {
	// Tank above threshold: pump untouched. Tank drops below: pump opens.
	ctx := newFakeContext(0)
	ctx.values["T1"] = 12.5
	ctx.values["PMP1"] = 0

	engine := NewEngine([]Rule{
		&BelowControl{Actuator: "PMP1", Command: "open", Dependant: "T1", Threshold: 10},
	}, nil, nil)

	if err := engine.Apply(ctx); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if ctx.values["PMP1"] != 0 {
		t.Errorf("PMP1 = %v after first apply, want unchanged 0", ctx.values["PMP1"])
	}

	ctx.values["T1"] = 8.0
	if err := engine.Apply(ctx); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if ctx.values["PMP1"] != 1 {
		t.Errorf("PMP1 = %v after T1 dropped, want 1", ctx.values["PMP1"])
	}
}

func TestBetweenAttackScenario(t *testing.T) {
	// T1 inside [5, 15] forces PMP1 closed even though the control says open.
	ctx := newFakeContext(0)
	ctx.values["T1"] = 12.5

	controls := []Rule{
		&BelowControl{Actuator: "PMP1", Command: "open", Dependant: "T1", Threshold: 20},
	}
	attacks := []Rule{
		&TriggerBetweenAttack{Name: "drain", Actuators: []string{"PMP1"}, Command: "closed", Sensor: "T1", Lower: 5, Upper: 15},
	}

	engine := NewEngine(controls, attacks, nil)
	if err := engine.Apply(ctx); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if ctx.values["PMP1"] != 0 {
		t.Errorf("PMP1 = %v, want 0", ctx.values["PMP1"])
	}
}

func TestBetweenAttackBoundsInclusive(t *testing.T) {
	attack := &TriggerBetweenAttack{Actuators: []string{"A"}, Command: "closed", Sensor: "S", Lower: 5, Upper: 15}

	tests := []struct {
		value float64
		want  bool
	}{
		{4.999, false},
		{5, true},
		{15, true},
		{15.001, false},
	}
	for _, tt := range tests {
		ctx := newFakeContext(0)
		ctx.values["S"] = tt.value
		got, _ := attack.Evaluate(ctx)
		if got != tt.want {
			t.Errorf("active at %v = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestTimeControlFiresOnExactIteration(t *testing.T) {
	control := &TimeControl{Actuator: "V1", Command: "closed", At: 200}

	for _, clock := range []int64{199, 201} {
		ctx := newFakeContext(clock)
		got, _ := control.Evaluate(ctx)
		if got {
			t.Errorf("TimeControl fired at clock %d", clock)
		}
	}

	ctx := newFakeContext(200)
	got, _ := control.Evaluate(ctx)
	if !got {
		t.Error("TimeControl did not fire at its iteration")
	}
}

func TestAttackDrivesMultipleActuators(t *testing.T) {
	ctx := newFakeContext(7)
	engine := NewEngine(nil, []Rule{
		&TimeAttack{Name: "blackout", Actuators: []string{"PMP1", "PMP2", "V1"}, Command: "closed", Start: 0, End: 10},
	}, nil)

	if err := engine.Apply(ctx); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	for _, a := range []string{"PMP1", "PMP2", "V1"} {
		if v, ok := ctx.values[a]; !ok || v != 0 {
			t.Errorf("actuator %s = %v, want 0", a, v)
		}
	}
}

func TestApplyPropagatesReadFailure(t *testing.T) {
	ctx := newFakeContext(0)
	ctx.readErr = errors.New("peer unreachable")

	engine := NewEngine([]Rule{
		&AboveControl{Actuator: "PMP1", Command: "open", Dependant: "T1", Threshold: 1},
	}, nil, nil)

	if err := engine.Apply(ctx); err == nil {
		t.Error("Apply should propagate the read failure")
	}
}

func TestLaterRuleSeesEarlierWrite(t *testing.T) {
	// No snapshot isolation: the second control reads the actuator state the
	// first control just wrote.
	ctx := newFakeContext(0)
	ctx.values["PMP1"] = 0

	controls := []Rule{
		&BelowControl{Actuator: "PMP1", Command: "open", Dependant: "PMP1", Threshold: 0.5},
		&AboveControl{Actuator: "V1", Command: "open", Dependant: "PMP1", Threshold: 0.5},
	}

	engine := NewEngine(controls, nil, nil)
	if err := engine.Apply(ctx); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if ctx.values["V1"] != 1 {
		t.Errorf("V1 = %v, want 1 (second rule must see first rule's write)", ctx.values["V1"])
	}
}

func TestRulesFromConfig(t *testing.T) {
	controls, err := ControlsFromConfig([]topology.ControlConfig{
		{Type: "below", Actuator: "PMP1", Action: "open", Dependant: "T1", Value: 10},
		{Type: "time", Actuator: "V1", Action: "closed", Value: 200},
	})
	if err != nil {
		t.Fatalf("ControlsFromConfig error: %v", err)
	}
	if len(controls) != 2 {
		t.Fatalf("controls = %d, want 2", len(controls))
	}
	if _, ok := controls[0].(*BelowControl); !ok {
		t.Errorf("controls[0] = %T, want *BelowControl", controls[0])
	}
	if tc, ok := controls[1].(*TimeControl); !ok || tc.At != 200 {
		t.Errorf("controls[1] = %T (%+v), want *TimeControl at 200", controls[1], controls[1])
	}

	attacks, err := AttacksFromConfig([]topology.AttackConfig{
		{Type: "between", Name: "drain", Actuators: []string{"PMP1"}, Command: "closed", Sensor: "T1", LowerValue: 5, UpperValue: 15},
	})
	if err != nil {
		t.Fatalf("AttacksFromConfig error: %v", err)
	}
	if _, ok := attacks[0].(*TriggerBetweenAttack); !ok {
		t.Errorf("attacks[0] = %T, want *TriggerBetweenAttack", attacks[0])
	}

	if _, err := ControlsFromConfig([]topology.ControlConfig{{Type: "sideways"}}); err == nil {
		t.Error("unknown control type should error")
	}
	if _, err := AttacksFromConfig([]topology.AttackConfig{{Type: "sideways"}}); err == nil {
		t.Error("unknown attack type should error")
	}
}
