package rules

// TimeAttack forces actuators during a fixed window of the master clock,
// bounds inclusive.
type TimeAttack struct {
	Name      string
	Actuators []string
	Command   string
	Start     int64
	End       int64
}

func (a *TimeAttack) Evaluate(ctx Context) (bool, error) {
	now, err := ctx.Clock()
	if err != nil {
		return false, err
	}
	return now >= a.Start && now <= a.End, nil
}

func (a *TimeAttack) Action() ([]string, string) {
	return a.Actuators, a.Command
}

// TriggerAboveAttack forces actuators while a monitored sensor is above a
// threshold. Re-evaluated fresh every iteration; no hysteresis.
type TriggerAboveAttack struct {
	Name      string
	Actuators []string
	Command   string
	Sensor    string
	Threshold float64
}

func (a *TriggerAboveAttack) Evaluate(ctx Context) (bool, error) {
	v, err := ctx.ReadTag(a.Sensor)
	if err != nil {
		return false, err
	}
	return v > a.Threshold, nil
}

func (a *TriggerAboveAttack) Action() ([]string, string) {
	return a.Actuators, a.Command
}

// TriggerBelowAttack forces actuators while a monitored sensor is below a
// threshold.
type TriggerBelowAttack struct {
	Name      string
	Actuators []string
	Command   string
	Sensor    string
	Threshold float64
}

func (a *TriggerBelowAttack) Evaluate(ctx Context) (bool, error) {
	v, err := ctx.ReadTag(a.Sensor)
	if err != nil {
		return false, err
	}
	return v < a.Threshold, nil
}

func (a *TriggerBelowAttack) Action() ([]string, string) {
	return a.Actuators, a.Command
}

// TriggerBetweenAttack forces actuators while a monitored sensor sits inside
// a closed interval.
type TriggerBetweenAttack struct {
	Name      string
	Actuators []string
	Command   string
	Sensor    string
	Lower     float64
	Upper     float64
}

func (a *TriggerBetweenAttack) Evaluate(ctx Context) (bool, error) {
	v, err := ctx.ReadTag(a.Sensor)
	if err != nil {
		return false, err
	}
	return v >= a.Lower && v <= a.Upper, nil
}

func (a *TriggerBetweenAttack) Action() ([]string, string) {
	return a.Actuators, a.Command
}
