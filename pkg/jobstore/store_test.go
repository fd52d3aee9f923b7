package jobstore

import (
	"os"
	"path/filepath"
	"testing"
)

func testStatePoint() *StatePoint {
	return &StatePoint{
		T:              300.0,
		P:              1.0,
		NLiq:           500,
		NVap:           500,
		ExptLiqDensity: 1200.0,
		NStepsLiqEq:    5000,
		NStepsEq:       10000,
		NStepsProd:     100000,
		ForceField: map[string]LJ{
			"C1": {Sigma: 0.340, Epsilon: 0.45},
			"C2": {Sigma: 0.340, Epsilon: 0.45},
			"F1": {Sigma: 0.312, Epsilon: 0.25},
			"F2": {Sigma: 0.312, Epsilon: 0.25},
			"H1": {Sigma: 0.257, Epsilon: 0.07},
		},
	}
}

func TestJobID_Deterministic(t *testing.T) {
	a, err := JobID(testStatePoint())
	if err != nil {
		t.Fatalf("JobID() error: %v", err)
	}
	b, err := JobID(testStatePoint())
	if err != nil {
		t.Fatalf("JobID() error: %v", err)
	}
	if a != b {
		t.Fatalf("job id not deterministic: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32-char hex id, got %q", a)
	}

	other := testStatePoint()
	other.T = 280.0
	c, err := JobID(other)
	if err != nil {
		t.Fatalf("JobID() error: %v", err)
	}
	if c == a {
		t.Fatalf("distinct state points produced the same id")
	}
}

func TestStore_InitOpenRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	job, created, err := s.Init(testStatePoint())
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if !created {
		t.Fatalf("expected first Init to create the job")
	}

	got, err := s.Open(job.ID)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got.SP.T != 300.0 || got.SP.NLiq != 500 {
		t.Fatalf("state point not persisted: %+v", got.SP)
	}
	if got.SP.ForceField["H1"].Sigma != 0.257 {
		t.Fatalf("forcefield parameters not persisted")
	}
}

func TestStore_InitIsIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())

	first, created, err := s.Init(testStatePoint())
	if err != nil || !created {
		t.Fatalf("first Init: created=%v err=%v", created, err)
	}
	if err := first.DocSet("vapboxl", 27.46); err != nil {
		t.Fatalf("DocSet() error: %v", err)
	}

	second, created, err := s.Init(testStatePoint())
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if created {
		t.Fatalf("second Init must not recreate the job")
	}
	if v, ok := second.DocGet("vapboxl"); !ok || v != 27.46 {
		t.Fatalf("re-init clobbered the document: %v %v", v, ok)
	}
}

func TestStore_InitRejectsInvalidStatePoint(t *testing.T) {
	s := NewStore(t.TempDir())

	sp := testStatePoint()
	delete(sp.ForceField, "F2")
	if _, _, err := s.Init(sp); err == nil {
		t.Fatalf("expected missing-parameter fault")
	}

	sp = testStatePoint()
	sp.NLiq = 0
	if _, _, err := s.Init(sp); err == nil {
		t.Fatalf("expected molecule-count validation error")
	}
}

func TestJob_DocumentPersistsAcrossOpens(t *testing.T) {
	s := NewStore(t.TempDir())
	job, _, err := s.Init(testStatePoint())
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	if err := job.DocSet("liqboxl", 4.36); err != nil {
		t.Fatalf("DocSet() error: %v", err)
	}
	if err := job.DocSet("liq_density", 1198.4); err != nil {
		t.Fatalf("DocSet() error: %v", err)
	}

	reopened, err := s.Open(job.ID)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if !reopened.DocHas("liqboxl", "liq_density") {
		t.Fatalf("document keys lost on reopen: %v", reopened.Doc())
	}
}

func TestJob_StatusRecord(t *testing.T) {
	s := NewStore(t.TempDir())
	job, _, err := s.Init(testStatePoint())
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	if job.StageDone("calc-vapboxl") {
		t.Fatalf("fresh job reports stage complete")
	}
	if err := job.MarkStage("calc-vapboxl"); err != nil {
		t.Fatalf("MarkStage() error: %v", err)
	}

	reopened, err := s.Open(job.ID)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if !reopened.StageDone("calc-vapboxl") {
		t.Fatalf("status record not persisted")
	}
}

func TestStore_ListSkipsStrayDirs(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	if _, _, err := s.Init(testStatePoint()); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if err := os.MkdirAll(root+"/not-a-job", 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	jobs, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
}

func TestNewStore_ResolvesRelativeRoot(t *testing.T) {
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	s := NewStore("workspace")

	if !filepath.IsAbs(s.RootDir()) {
		t.Fatalf("store root %q is not absolute", s.RootDir())
	}

	job, _, err := s.Init(testStatePoint())
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	// Job file names are embedded in rendered engine inputs, which run
	// from other working directories.
	if !filepath.IsAbs(job.Fn("ff.xml")) {
		t.Fatalf("job file name %q is not absolute", job.Fn("ff.xml"))
	}
}
