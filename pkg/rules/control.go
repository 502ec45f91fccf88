package rules

// AboveControl drives an actuator while a dependant tag is above a threshold.
type AboveControl struct {
	Actuator  string
	Command   string
	Dependant string
	Threshold float64
}

func (c *AboveControl) Evaluate(ctx Context) (bool, error) {
	v, err := ctx.ReadTag(c.Dependant)
	if err != nil {
		return false, err
	}
	return v > c.Threshold, nil
}

func (c *AboveControl) Action() ([]string, string) {
	return []string{c.Actuator}, c.Command
}

// BelowControl drives an actuator while a dependant tag is below a threshold.
type BelowControl struct {
	Actuator  string
	Command   string
	Dependant string
	Threshold float64
}

func (c *BelowControl) Evaluate(ctx Context) (bool, error) {
	v, err := ctx.ReadTag(c.Dependant)
	if err != nil {
		return false, err
	}
	return v < c.Threshold, nil
}

func (c *BelowControl) Action() ([]string, string) {
	return []string{c.Actuator}, c.Command
}

// TimeControl drives an actuator at one fixed iteration of the master clock.
type TimeControl struct {
	Actuator string
	Command  string
	At       int64
}

func (c *TimeControl) Evaluate(ctx Context) (bool, error) {
	now, err := ctx.Clock()
	if err != nil {
		return false, err
	}
	return now == c.At, nil
}

func (c *TimeControl) Action() ([]string, string) {
	return []string{c.Actuator}, c.Command
}
