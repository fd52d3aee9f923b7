// Package output provides JSONL event output for pipeline runs.
//
// Events are structured as typed record envelopes covering stage
// transitions, per-job results, errors, and the final run summary. Each
// line is a self-contained JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: fffit.<type>.v<version>
const (
	// TypeStage identifies stage transition records.
	TypeStage = "fffit.stage.v1"

	// TypeJob identifies per-job result records.
	TypeJob = "fffit.job.v1"

	// TypeError identifies error records.
	TypeError = "fffit.error.v1"

	// TypeSummary identifies the final run summary record.
	TypeSummary = "fffit.summary.v1"
)

// Record is the envelope for all JSONL output.
type Record struct {
	// Type identifies the record type (e.g., "fffit.stage.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// RunID is the correlation ID for this pipeline run.
	RunID string `json:"run_id"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// StageStatus enumerates the outcomes reported in stage records.
type StageStatus string

const (
	StageStarted   StageStatus = "started"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StagePending   StageStatus = "pending"
)

// StageRecord is the data payload for stage transitions.
type StageRecord struct {
	// JobID is the job the stage ran against.
	JobID string `json:"job_id"`

	// Stage is the stage identifier (e.g., "equilibrate-liqbox").
	Stage string `json:"stage"`

	// Status is the transition being reported.
	Status StageStatus `json:"status"`

	// Error carries the failure message for StageFailed records.
	Error string `json:"error,omitempty"`

	// ElapsedMS is the stage wall time for terminal records.
	ElapsedMS int64 `json:"elapsed_ms,omitempty"`
}

// JobRecord is the data payload for per-job results.
type JobRecord struct {
	JobID string `json:"job_id"`

	// StagesRun is how many stage actions executed during this pass.
	StagesRun int `json:"stages_run"`

	// Complete reports whether every pipeline stage is now satisfied.
	Complete bool `json:"complete"`

	// Error carries a fatal job error, if any.
	Error string `json:"error,omitempty"`
}

// ErrorRecord is the data payload for non-fatal errors.
type ErrorRecord struct {
	JobID   string `json:"job_id,omitempty"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message"`
}

// SummaryRecord is the data payload for the final run summary.
type SummaryRecord struct {
	Jobs          int    `json:"jobs"`
	JobsComplete  int    `json:"jobs_complete"`
	StagesRun     int    `json:"stages_run"`
	Errors        int    `json:"errors"`
	DurationMS    int64  `json:"duration_ms"`
	WorkspaceRoot string `json:"workspace_root,omitempty"`
}
