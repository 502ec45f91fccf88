package telemetry

import (
	"encoding/csv"
	"os"
	"testing"
)

func TestRecorderWriteCSV(t *testing.T) {
	r := NewRecorder("plc2", "T1")
	r.Record(1, 12.5)
	r.Record(2, 11.25)
	r.Record(3, 8.0)

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}

	dir := t.TempDir()
	path, err := r.WriteCSV(dir)
	if err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open artifact: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("artifact rows = %d, want header + 3", len(records))
	}
	header := records[0]
	if header[0] != "iteration" || header[1] != "timestamp" || header[2] != "T1" {
		t.Errorf("header = %v", header)
	}
	if records[1][0] != "1" || records[1][2] != "12.5" {
		t.Errorf("first row = %v", records[1])
	}
	if records[3][0] != "3" || records[3][2] != "8" {
		t.Errorf("last row = %v", records[3])
	}
}

func TestRecorderEmptyStillWritesHeader(t *testing.T) {
	r := NewRecorder("plc1", "T9")

	path, err := r.WriteCSV(t.TempDir())
	if err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "iteration,timestamp,T9\n" {
		t.Errorf("empty artifact = %q", string(data))
	}
}

func TestRecorderRunIDsDiffer(t *testing.T) {
	a := NewRecorder("plc1", "T1")
	b := NewRecorder("plc1", "T1")
	if a.RunID() == b.RunID() {
		t.Error("two runs share a run ID")
	}
}
