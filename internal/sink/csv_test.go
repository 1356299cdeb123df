package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"nctrace/internal/config"
	"nctrace/internal/table"
	"nctrace/internal/value"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func TestCSVSinkExplodesMColumn(t *testing.T) {
	cfg := config.New([]string{"X"})
	rows := []map[string]value.Value{
		{"X": value.Float(1), "M": value.StrList([]string{"M3", "M8"})},
		{"X": value.Float(2)},
	}
	tbl, err := table.Finalize(rows, cfg)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := NewCSVSink(path).Write(tbl); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records := readCSV(t, path)
	// header + 2 exploded rows for the first block + 1 row for the second.
	if len(records) != 4 {
		t.Fatalf("expected 4 CSV records (1 header + 3 rows), got %d: %v", len(records), records)
	}

	mIndex := -1
	for i, name := range records[0] {
		if name == "M" {
			mIndex = i
		}
	}
	if mIndex < 0 {
		t.Fatal("M column missing from CSV header")
	}
	if records[1][mIndex] != "M3" || records[2][mIndex] != "M8" {
		t.Errorf("expected exploded M values M3/M8, got %q/%q", records[1][mIndex], records[2][mIndex])
	}
	if records[3][mIndex] != "" {
		t.Errorf("row with no M commands should render an empty M field, got %q", records[3][mIndex])
	}
}

func TestCSVSinkRowWithNoMCommandsIsNotExploded(t *testing.T) {
	cfg := config.New([]string{"X"})
	rows := []map[string]value.Value{
		{"X": value.Float(1)},
	}
	tbl, err := table.Finalize(rows, cfg)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := NewCSVSink(path).Write(tbl); err != nil {
		t.Fatalf("Write: %v", err)
	}
	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("expected 1 header + 1 row, got %d: %v", len(records), records)
	}
}
