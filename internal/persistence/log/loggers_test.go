package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"planetforge.ai/internal/worker"
)

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "runs")
	clock := time.Date(2026, 3, 4, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	if err := w.Write(map[string]int{"n": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write(map[string]int{"n": 2}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := w.Write(map[string]int{"n": 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	count := func(name string) int {
		t.Helper()
		n := 0
		if err := ReadJSONL(filepath.Join(dir, name), func([]byte) error { n++; return nil }); err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return n
	}
	if got := count("runs-2026-03-04-10.jsonl.zst"); got != 2 {
		t.Fatalf("hour 10 lines=%d want 2", got)
	}
	if got := count("runs-2026-03-04-11.jsonl.zst"); got != 1 {
		t.Fatalf("hour 11 lines=%d want 1", got)
	}
}

func TestRunLogger_RecordsRuns(t *testing.T) {
	dir := t.TempDir()
	l := NewRunLogger(dir, nil)
	l.RecordRun(worker.Record{ID: "a", Seed: 7, Faces: 320, Vegetation: map[string]int{"pine": 4}})
	l.RecordRun(worker.Record{ID: "b", Code: "E_BAD_CONFIG", Error: "colors: bad hex"})
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "runs", "runs-*.jsonl.zst"))
	if err != nil || len(files) == 0 {
		t.Fatalf("no run files: %v", err)
	}
	var got []worker.Record
	for _, f := range files {
		if err := ReadJSONL(f, func(line []byte) error {
			var r worker.Record
			if err := json.Unmarshal(line, &r); err != nil {
				return err
			}
			got = append(got, r)
			return nil
		}); err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if len(got) != 2 || got[0].ID != "a" || got[0].Vegetation["pine"] != 4 || got[1].Code != "E_BAD_CONFIG" {
		t.Fatalf("records=%+v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "runs")); err != nil {
		t.Fatalf("runs dir: %v", err)
	}
}
