// Package telemetry accumulates the per-iteration sensor readings a PLC
// observes and persists them as the testbed's output artifact on shutdown.
package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Row is one observed reading.
type Row struct {
	Iteration int64
	Timestamp time.Time
	Value     float64
}

// Recorder buffers readings in memory. Persistence happens once, at
// shutdown; a crash loses the buffer, which the testbed accepts (fail-fast
// over data preservation).
type Recorder struct {
	plc    string
	sensor string
	runID  string

	mu   sync.Mutex
	rows []Row
}

// NewRecorder creates a recorder for one PLC's primary sensor. Each run gets
// a unique ID so repeated experiments never clobber each other's artifacts.
func NewRecorder(plc, sensor string) *Recorder {
	return &Recorder{
		plc:    plc,
		sensor: sensor,
		runID:  uuid.NewString(),
	}
}

// RunID returns the unique identifier of this run.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record appends one reading stamped with the current time.
func (r *Recorder) Record(iteration int64, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, Row{
		Iteration: iteration,
		Timestamp: time.Now().UTC(),
		Value:     value,
	})
}

// Len returns the number of buffered rows.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// WriteCSV persists the buffered rows as delimited text under dir and
// returns the artifact path. The directory is created if missing.
func (r *Recorder) WriteCSV(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", r.plc, r.runID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output artifact: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"iteration", "timestamp", r.sensor}); err != nil {
		return "", err
	}

	r.mu.Lock()
	rows := make([]Row, len(r.rows))
	copy(rows, r.rows)
	r.mu.Unlock()

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.Iteration, 10),
			row.Timestamp.Format(time.RFC3339Nano),
			strconv.FormatFloat(row.Value, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush output artifact: %w", err)
	}
	return path, nil
}
