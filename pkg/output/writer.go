package output

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

// Writer emits JSONL records for pipeline runs.
//
// Implementations must be safe for concurrent use from multiple
// goroutines; independent jobs report stage transitions in parallel.
type Writer interface {
	// WriteStage emits a stage transition record.
	WriteStage(rec *StageRecord) error

	// WriteJob emits a per-job result record.
	WriteJob(rec *JobRecord) error

	// WriteError emits an error record.
	WriteError(rec *ErrorRecord) error

	// WriteSummary emits the final run summary record.
	WriteSummary(rec *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// Writes are serialized with a mutex so lines never interleave.
type JSONLWriter struct {
	w     io.Writer
	runID string
	mu    sync.Mutex

	closed bool
}

// NewJSONLWriter creates a new JSONL writer. runID is the correlation ID
// stamped on every record.
func NewJSONLWriter(w io.Writer, runID string) *JSONLWriter {
	return &JSONLWriter{w: w, runID: runID}
}

func (jw *JSONLWriter) WriteStage(rec *StageRecord) error {
	return jw.writeRecord(TypeStage, rec)
}

func (jw *JSONLWriter) WriteJob(rec *JobRecord) error {
	return jw.writeRecord(TypeJob, rec)
}

func (jw *JSONLWriter) WriteError(rec *ErrorRecord) error {
	return jw.writeRecord(TypeError, rec)
}

func (jw *JSONLWriter) WriteSummary(rec *SummaryRecord) error {
	return jw.writeRecord(TypeSummary, rec)
}

func (jw *JSONLWriter) writeRecord(recType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope := Record{
		Type:  recType,
		TS:    time.Now().UTC(),
		RunID: jw.runID,
		Data:  payload,
	}
	line, err := json.Marshal(&envelope)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	jw.mu.Lock()
	defer jw.mu.Unlock()
	if jw.closed {
		return errors.New("writer is closed")
	}
	_, err = jw.w.Write(line)
	return err
}

// Close marks the writer closed. The underlying io.Writer is not closed;
// the caller owns it.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.closed = true
	return nil
}

// Discard is a Writer that drops all records. Used when no event stream
// was requested.
type Discard struct{}

func (Discard) WriteStage(*StageRecord) error     { return nil }
func (Discard) WriteJob(*JobRecord) error         { return nil }
func (Discard) WriteError(*ErrorRecord) error     { return nil }
func (Discard) WriteSummary(*SummaryRecord) error { return nil }
func (Discard) Close() error                      { return nil }
