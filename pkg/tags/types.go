package tags

// Kind classifies a process variable.
type Kind int

const (
	// Sensor tags carry fixed-point measurements (tank levels, pressures)
	Sensor Kind = iota
	// Actuator tags carry binary device state (0 = closed, 1 = open)
	Actuator
)

// String returns the string representation of a tag kind
func (k Kind) String() string {
	switch k {
	case Sensor:
		return "sensor"
	case Actuator:
		return "actuator"
	default:
		return "unknown"
	}
}

// Tag identifies a process variable owned by exactly one PLC.
type Tag struct {
	Name  string
	Index int
}

// NewTag creates a tag with the default index.
// The testbed addresses every variable at index 1.
func NewTag(name string) Tag {
	return Tag{Name: name, Index: 1}
}

// TagValue pairs a tag with its current value, used for ordered snapshots.
type TagValue struct {
	Tag   Tag
	Kind  Kind
	Value float64
}

// Actuator state values
const (
	Closed float64 = 0
	Open   float64 = 1
)
