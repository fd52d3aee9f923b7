package jobstore

import (
	"path/filepath"
)

// Job is one simulation instance: an immutable state point plus a mutable
// document and status record, all rooted in a private working directory.
//
// A Job is not safe for concurrent use; the pipeline runs one stage at a
// time per job.
type Job struct {
	ID string
	SP StatePoint

	dir    string
	doc    Document
	status Status
}

// Dir returns the job's working directory.
func (j *Job) Dir() string {
	return j.dir
}

// Fn returns the path of name inside the job directory, mirroring how
// stages address their inputs and outputs.
func (j *Job) Fn(name string) string {
	return filepath.Join(j.dir, name)
}

// Doc returns a copy of the document payload.
func (j *Job) Doc() Document {
	out := make(Document, len(j.doc))
	for k, v := range j.doc {
		out[k] = v
	}
	return out
}

// DocGet looks up a single document value.
func (j *Job) DocGet(key string) (float64, bool) {
	v, ok := j.doc[key]
	return v, ok
}

// DocHas reports whether key is present in the document.
func (j *Job) DocHas(keys ...string) bool {
	for _, k := range keys {
		if _, ok := j.doc[k]; !ok {
			return false
		}
	}
	return true
}

// DocSet stores key and persists the document immediately. Each stage
// mutation hits disk so a crash between stages loses nothing.
func (j *Job) DocSet(key string, value float64) error {
	if j.doc == nil {
		j.doc = Document{}
	}
	j.doc[key] = value
	return writeJSON(filepath.Join(j.dir, documentFile), j.doc)
}

// StageDone reports whether stage is marked complete in the status record.
func (j *Job) StageDone(stage string) bool {
	return j.status.Done(stage)
}

// MarkStage records stage as complete and persists the status record.
func (j *Job) MarkStage(stage string) error {
	j.status.Mark(stage)
	return writeJSON(filepath.Join(j.dir, statusFile), &j.status)
}

// CompletedStages returns the status record's completed-stage tags.
func (j *Job) CompletedStages() []string {
	out := make([]string, 0, len(j.status.Completed))
	for k := range j.status.Completed {
		out = append(out, k)
	}
	return out
}
