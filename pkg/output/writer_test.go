package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLWriter_EmitsParsableLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123")

	if err := w.WriteStage(&StageRecord{JobID: "j1", Stage: "calc-vapboxl", Status: StageCompleted, ElapsedMS: 3}); err != nil {
		t.Fatalf("WriteStage() error: %v", err)
	}
	if err := w.WriteJob(&JobRecord{JobID: "j1", StagesRun: 4, Complete: true}); err != nil {
		t.Fatalf("WriteJob() error: %v", err)
	}
	if err := w.WriteSummary(&SummaryRecord{Jobs: 1, JobsComplete: 1, StagesRun: 4}); err != nil {
		t.Fatalf("WriteSummary() error: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var types []string
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line is not valid JSON: %v\n%s", err, scanner.Text())
		}
		if rec.RunID != "run-123" {
			t.Fatalf("run id not stamped: %+v", rec)
		}
		types = append(types, rec.Type)
	}
	want := []string{TypeStage, TypeJob, TypeSummary}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("record types mismatch: got %v want %v", types, want)
	}
}

func TestJSONLWriter_RejectsWritesAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123")

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := w.WriteStage(&StageRecord{JobID: "j1", Stage: "x", Status: StageStarted}); err == nil {
		t.Fatalf("expected error writing to closed writer")
	}
}
