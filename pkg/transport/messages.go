package transport

import (
	"fmt"
	"strconv"
	"time"
)

// SnapshotTopic prefixes every published snapshot frame. Subscribers filter
// on it.
var SnapshotTopic = []byte("TAGS ")

// TagRequest asks a peer for the current value of one of its owned tags.
type TagRequest struct {
	RequestID string `json:"request_id"`
	Tag       string `json:"tag"`
	Index     int    `json:"index"`
}

// TagResponse answers a TagRequest. Value travels as a fixed-point decimal
// string so both transports round-trip the same representation.
type TagResponse struct {
	RequestID string `json:"request_id"`
	Value     string `json:"value,omitempty"`
	Found     bool   `json:"found"`
	Error     string `json:"error,omitempty"`
}

// TagSample is one tag's value inside a snapshot frame.
type TagSample struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// SnapshotFrame is the periodically broadcast view of a PLC's tag table.
type SnapshotFrame struct {
	PLC     string      `json:"plc"`
	SentAt  time.Time   `json:"sent_at"`
	Samples []TagSample `json:"samples"`
}

// FormatValue renders a tag value in the wire's decimal representation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseValue parses a wire decimal back to a tag value.
func ParseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed tag value %q: %w", s, err)
	}
	return v, nil
}
