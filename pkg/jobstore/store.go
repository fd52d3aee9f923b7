// Package jobstore persists per-job simulation state on disk.
//
// Directory layout:
//
//	<root>/<job_id>/statepoint.json   immutable job parameters
//	<root>/<job_id>/document.json     derived numeric payload
//	<root>/<job_id>/status.json       completed-stage record
//
// plus whatever files the pipeline stages and the simulation engine write
// into the job directory. All JSON writes go through a temp-file rename so
// a crashed run never leaves a torn file behind.
package jobstore

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	statePointFile = "statepoint.json"
	documentFile   = "document.json"
	statusFile     = "status.json"
)

// Store manages the workspace directory holding all jobs.
type Store struct {
	root string
}

// NewStore creates a store rooted at root. The root is resolved to an
// absolute path so job file names stay valid when embedded in engine
// inputs that run from other working directories.
func NewStore(root string) *Store {
	root = strings.TrimSpace(root)
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return &Store{root: root}
}

func (s *Store) RootDir() string {
	return s.root
}

func (s *Store) JobDir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

func (s *Store) ensureRoot() error {
	if strings.TrimSpace(s.root) == "" {
		return fmt.Errorf("workspace root dir is empty")
	}
	return os.MkdirAll(s.root, 0755)
}

// JobID derives the job identifier from a state point: the md5 hex digest
// of its canonical JSON encoding. Struct field order makes the encoding
// deterministic; map keys are sorted by encoding/json.
func JobID(sp *StatePoint) (string, error) {
	b, err := json.Marshal(sp)
	if err != nil {
		return "", fmt.Errorf("encode state point: %w", err)
	}
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:]), nil
}

// Init creates the job directory for sp if it does not already exist and
// returns the opened job. Re-initializing an existing job is a no-op: the
// stored state point wins and sp is not compared against it.
func (s *Store) Init(sp *StatePoint) (*Job, bool, error) {
	if err := sp.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid state point: %w", err)
	}
	if err := s.ensureRoot(); err != nil {
		return nil, false, err
	}

	id, err := JobID(sp)
	if err != nil {
		return nil, false, err
	}

	dir := s.JobDir(id)
	if _, err := os.Stat(filepath.Join(dir, statePointFile)); err == nil {
		job, err := s.Open(id)
		return job, false, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, false, fmt.Errorf("create job dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, statePointFile), sp); err != nil {
		return nil, false, err
	}
	if err := writeJSON(filepath.Join(dir, statusFile), &Status{Completed: map[string]time.Time{}}); err != nil {
		return nil, false, err
	}

	job, err := s.Open(id)
	return job, true, err
}

// Open loads an existing job by ID.
func (s *Store) Open(jobID string) (*Job, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("job id is required")
	}
	dir := s.JobDir(jobID)

	var sp StatePoint
	if err := readJSON(filepath.Join(dir, statePointFile), &sp); err != nil {
		return nil, fmt.Errorf("load state point for job %s: %w", jobID, err)
	}

	doc := Document{}
	if err := readJSON(filepath.Join(dir, documentFile), &doc); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load document for job %s: %w", jobID, err)
	}

	status := Status{}
	if err := readJSON(filepath.Join(dir, statusFile), &status); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load status for job %s: %w", jobID, err)
	}

	return &Job{ID: jobID, SP: sp, dir: dir, doc: doc, status: status}, nil
}

// List opens every job found under the workspace root, sorted by ID.
func (s *Store) List() ([]*Job, error) {
	if err := s.ensureRoot(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace root: %w", err)
	}

	out := make([]*Job, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		job, err := s.Open(entry.Name())
		if err != nil {
			// Stray directories (editor droppings, partial deletes) are
			// skipped rather than failing the whole listing.
			continue
		}
		out = append(out, job)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON atomically replaces path with the JSON encoding of v.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
