package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
)

func newTestJob(t *testing.T) *jobstore.Job {
	t.Helper()
	s := jobstore.NewStore(t.TempDir())
	job, _, err := s.Init(&jobstore.StatePoint{
		T: 300, P: 1, NLiq: 10, NVap: 10, ExptLiqDensity: 1200,
		NStepsLiqEq: 1, NStepsEq: 1, NStepsProd: 1,
		ForceField: map[string]jobstore.LJ{
			"C1": {Sigma: 0.3, Epsilon: 0.4},
			"C2": {Sigma: 0.3, Epsilon: 0.4},
			"F1": {Sigma: 0.3, Epsilon: 0.4},
			"F2": {Sigma: 0.3, Epsilon: 0.4},
			"H1": {Sigma: 0.3, Epsilon: 0.4},
		},
	})
	if err != nil {
		t.Fatalf("init job: %v", err)
	}
	return job
}

// docStage completes once key is present in the document.
func docStage(id StageID, key string, after ...StageID) Stage {
	return Stage{
		ID:    id,
		After: after,
		Post: func(job *jobstore.Job) Completion {
			if job.DocHas(key) {
				return Complete
			}
			return Incomplete
		},
		Run: func(ctx context.Context, job *jobstore.Job) error {
			return job.DocSet(key, 1.0)
		},
	}
}

func TestNew_RejectsBadGraphs(t *testing.T) {
	if _, err := New(docStage("a", "a"), docStage("a", "a2")); err == nil {
		t.Fatalf("expected duplicate-id error")
	}
	if _, err := New(docStage("a", "a", "missing")); err == nil {
		t.Fatalf("expected unknown-dependency error")
	}

	cycleA := docStage("a", "a", "b")
	cycleB := docStage("b", "b", "a")
	if _, err := New(cycleA, cycleB); err == nil {
		t.Fatalf("expected cycle error")
	}
}

func TestDriver_RunsStagesInDependencyOrder(t *testing.T) {
	var order []StageID
	record := func(s Stage) Stage {
		run := s.Run
		s.Run = func(ctx context.Context, job *jobstore.Job) error {
			order = append(order, s.ID)
			return run(ctx, job)
		}
		return s
	}

	// Declared intentionally out of order.
	wf, err := New(
		record(docStage("last", "last", "mid")),
		record(docStage("mid", "mid", "first", "other")),
		record(docStage("first", "first")),
		record(docStage("other", "other")),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	job := newTestJob(t)
	res := NewDriver(wf, Config{Workers: 1}).RunJob(context.Background(), job)
	if res.Err != nil {
		t.Fatalf("RunJob() error: %v", res.Err)
	}
	if !res.Complete || res.StagesRun != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}

	pos := map[StageID]int{}
	for i, id := range order {
		pos[id] = i
	}
	if pos["first"] > pos["mid"] || pos["other"] > pos["mid"] || pos["mid"] > pos["last"] {
		t.Fatalf("dependency order violated: %v", order)
	}
}

func TestDriver_SkipsSatisfiedStages(t *testing.T) {
	runs := 0
	s := docStage("once", "once")
	inner := s.Run
	s.Run = func(ctx context.Context, job *jobstore.Job) error {
		runs++
		return inner(ctx, job)
	}

	wf, err := New(s)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	job := newTestJob(t)
	d := NewDriver(wf, Config{Workers: 1})
	for i := 0; i < 3; i++ {
		if res := d.RunJob(context.Background(), job); res.Err != nil {
			t.Fatalf("pass %d: %v", i, res.Err)
		}
	}
	if runs != 1 {
		t.Fatalf("idempotence violated: stage ran %d times", runs)
	}
	if !job.StageDone("once") {
		t.Fatalf("status record missing completed tag")
	}
}

func TestDriver_UnknownPostconditionRunsOncePerPass(t *testing.T) {
	runs := 0
	pending := Stage{
		ID: "pending",
		Post: func(job *jobstore.Job) Completion {
			return Unknown
		},
		Run: func(ctx context.Context, job *jobstore.Job) error {
			runs++
			return nil
		},
	}
	blocked := docStage("blocked", "blocked", "pending")

	wf, err := New(pending, blocked)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	job := newTestJob(t)
	res := NewDriver(wf, Config{Workers: 1}).RunJob(context.Background(), job)
	if res.Err != nil {
		t.Fatalf("RunJob() error: %v", res.Err)
	}
	if runs != 1 {
		t.Fatalf("unknown-post stage should run once per invocation, ran %d", runs)
	}
	if res.Complete {
		t.Fatalf("job must not report complete with an unmet stage")
	}
	if job.DocHas("blocked") {
		t.Fatalf("dependent stage ran despite unmet predecessor")
	}
}

func TestDriver_StageErrorEndsJobPass(t *testing.T) {
	boom := errors.New("engine exploded")
	failing := Stage{
		ID:   "failing",
		Post: func(job *jobstore.Job) Completion { return Incomplete },
		Run:  func(ctx context.Context, job *jobstore.Job) error { return boom },
	}
	downstream := docStage("downstream", "downstream", "failing")

	wf, err := New(failing, downstream)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	job := newTestJob(t)
	res := NewDriver(wf, Config{Workers: 1}).RunJob(context.Background(), job)
	if !errors.Is(res.Err, boom) {
		t.Fatalf("expected wrapped stage error, got %v", res.Err)
	}
	if job.DocHas("downstream") {
		t.Fatalf("downstream stage ran after failure")
	}
}

func TestDriver_RunAllIsolatesJobFailures(t *testing.T) {
	store := jobstore.NewStore(t.TempDir())
	var jobs []*jobstore.Job
	for i := 0; i < 3; i++ {
		sp := &jobstore.StatePoint{
			T: 300 + float64(i), P: 1, NLiq: 10, NVap: 10, ExptLiqDensity: 1200,
			NStepsLiqEq: 1, NStepsEq: 1, NStepsProd: 1,
			ForceField: map[string]jobstore.LJ{
				"C1": {Sigma: 0.3, Epsilon: 0.4},
				"C2": {Sigma: 0.3, Epsilon: 0.4},
				"F1": {Sigma: 0.3, Epsilon: 0.4},
				"F2": {Sigma: 0.3, Epsilon: 0.4},
				"H1": {Sigma: 0.3, Epsilon: 0.4},
			},
		}
		job, _, err := store.Init(sp)
		if err != nil {
			t.Fatalf("init job %d: %v", i, err)
		}
		jobs = append(jobs, job)
	}

	flaky := Stage{
		ID: "flaky",
		Post: func(job *jobstore.Job) Completion {
			if job.DocHas("flaky") {
				return Complete
			}
			return Incomplete
		},
		Run: func(ctx context.Context, job *jobstore.Job) error {
			if job.ID == jobs[1].ID {
				return errors.New("no luck")
			}
			return job.DocSet("flaky", 1.0)
		},
	}

	wf, err := New(flaky)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	sum := NewDriver(wf, Config{Workers: 2}).RunAll(context.Background(), jobs)
	if sum.Jobs != 3 || sum.JobsComplete != 2 || sum.Errors != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
