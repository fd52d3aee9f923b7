// Package pipeline implements a declarative stage DAG for per-job
// simulation workflows.
//
// A workflow is a set of stage descriptors: each stage names the stages it
// runs after, a postcondition predicate evaluated against job state, and an
// action. A generic driver repeatedly scans each job and executes any stage
// whose predecessors are complete and whose postcondition is not yet met,
// until the DAG is satisfied or no further progress is possible.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
)

// Completion is the three-valued result of a postcondition predicate.
//
// Unknown means the predicate could not decide (missing or unparsable
// output files); the driver treats it like Incomplete and retries the
// stage on a later pass instead of raising an error.
type Completion int

const (
	Incomplete Completion = iota
	Complete
	Unknown
)

func (c Completion) String() string {
	switch c {
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Completion(%d)", int(c))
	}
}

// StageID identifies a stage within a workflow.
type StageID string

// Stage is one node of the workflow DAG.
type Stage struct {
	// ID is the unique stage identifier.
	ID StageID

	// After lists the stages whose postconditions must be Complete before
	// this stage may run.
	After []StageID

	// Post evaluates whether the stage's work is already done. It must be
	// cheap, side-effect free, and tolerant: faults while inspecting job
	// state are reported as Unknown, never as errors.
	Post func(job *jobstore.Job) Completion

	// Run performs the stage's work. Errors abort the current pass over
	// the job; the stage is retried on the next pass.
	Run func(ctx context.Context, job *jobstore.Job) error
}

// Workflow is a validated, topologically ordered set of stages.
type Workflow struct {
	stages []Stage
	byID   map[StageID]*Stage
}

// New validates the stage set and returns a workflow with stages sorted in
// dependency order. It fails on duplicate IDs, references to unknown
// stages, and cycles.
func New(stages ...Stage) (*Workflow, error) {
	byID := make(map[StageID]*Stage, len(stages))
	for i := range stages {
		s := &stages[i]
		if s.ID == "" {
			return nil, fmt.Errorf("stage %d has an empty id", i)
		}
		if s.Post == nil || s.Run == nil {
			return nil, fmt.Errorf("stage %s must define both Post and Run", s.ID)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate stage id %s", s.ID)
		}
		byID[s.ID] = s
	}
	for _, s := range stages {
		for _, dep := range s.After {
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("stage %s depends on unknown stage %s", s.ID, dep)
			}
		}
	}

	ordered, err := topoSort(stages, byID)
	if err != nil {
		return nil, err
	}
	return &Workflow{stages: ordered, byID: byID}, nil
}

// Stages returns the stages in dependency order.
func (w *Workflow) Stages() []Stage {
	out := make([]Stage, len(w.stages))
	copy(out, w.stages)
	return out
}

// Stage looks up a stage by ID.
func (w *Workflow) Stage(id StageID) (*Stage, bool) {
	s, ok := w.byID[id]
	return s, ok
}

// Ready reports whether every predecessor of id evaluates Complete on job.
func (w *Workflow) Ready(id StageID, job *jobstore.Job) bool {
	s, ok := w.byID[id]
	if !ok {
		return false
	}
	for _, dep := range s.After {
		if w.byID[dep].Post(job) != Complete {
			return false
		}
	}
	return true
}

func topoSort(stages []Stage, byID map[StageID]*Stage) ([]Stage, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[StageID]int, len(stages))
	ordered := make([]Stage, 0, len(stages))

	var visit func(id StageID) error
	visit = func(id StageID) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("stage dependency cycle involving %s", id)
		}
		state[id] = visiting
		for _, dep := range byID[id].After {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = done
		ordered = append(ordered, *byID[id])
		return nil
	}

	// Iterate the declared order so ties keep a stable layout.
	for _, s := range stages {
		if err := visit(s.ID); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
