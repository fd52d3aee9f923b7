package jobstore

import (
	"fmt"
	"time"
)

// AtomTypes are the five R-125 atom types whose Lennard-Jones parameters
// vary between optimization rounds. All other force-field constants are
// fixed chemistry.
var AtomTypes = []string{"C1", "C2", "F1", "F2", "H1"}

// LJ holds a Lennard-Jones sigma/epsilon pair for one atom type.
//
// Units follow the force-field file convention: sigma in nm, epsilon in
// kJ/mol.
type LJ struct {
	Sigma   float64 `json:"sigma" yaml:"sigma"`
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`
}

// StatePoint identifies one simulation instance. It is written once at job
// creation and never mutated afterwards; the job ID is a content hash of
// its canonical JSON encoding.
//
// NOTE: Field names and JSON keys are part of the stable on-disk contract.
type StatePoint struct {
	// T is the temperature in K.
	T float64 `json:"T" yaml:"T"`

	// P is the pressure in bar.
	P float64 `json:"P" yaml:"P"`

	// NLiq and NVap are the molecule counts for the liquid and vapor boxes.
	NLiq int `json:"N_liq" yaml:"N_liq"`
	NVap int `json:"N_vap" yaml:"N_vap"`

	// ExptLiqDensity is the target experimental liquid density in kg/m^3.
	ExptLiqDensity float64 `json:"expt_liq_density" yaml:"expt_liq_density"`

	// Run lengths, in sweeps, for the three simulation phases.
	NStepsLiqEq int `json:"nsteps_liqeq" yaml:"nsteps_liqeq"`
	NStepsEq    int `json:"nsteps_eq" yaml:"nsteps_eq"`
	NStepsProd  int `json:"nsteps_prod" yaml:"nsteps_prod"`

	// ForceField maps atom type name to its LJ parameters for this round.
	ForceField map[string]LJ `json:"forcefield" yaml:"forcefield"`
}

// Validate checks that the state point is physically sensible and that all
// five atom types carry positive LJ parameters. A missing or zero parameter
// is the "missing-parameter fault" that force-field generation propagates.
func (sp *StatePoint) Validate() error {
	if sp.T <= 0 {
		return fmt.Errorf("temperature must be positive, got %g", sp.T)
	}
	if sp.P <= 0 {
		return fmt.Errorf("pressure must be positive, got %g", sp.P)
	}
	if sp.NLiq < 1 {
		return fmt.Errorf("N_liq must be at least 1, got %d", sp.NLiq)
	}
	if sp.NVap < 1 {
		return fmt.Errorf("N_vap must be at least 1, got %d", sp.NVap)
	}
	if sp.ExptLiqDensity <= 0 {
		return fmt.Errorf("expt_liq_density must be positive, got %g", sp.ExptLiqDensity)
	}
	if sp.NStepsLiqEq < 1 || sp.NStepsEq < 1 || sp.NStepsProd < 1 {
		return fmt.Errorf("all run lengths must be at least 1 sweep")
	}
	for _, at := range AtomTypes {
		lj, ok := sp.ForceField[at]
		if !ok {
			return fmt.Errorf("forcefield parameters missing for atom type %s", at)
		}
		if lj.Sigma <= 0 || lj.Epsilon <= 0 {
			return fmt.Errorf("forcefield parameters for atom type %s must be positive (sigma=%g epsilon=%g)", at, lj.Sigma, lj.Epsilon)
		}
	}
	return nil
}

// Document is the per-job numeric payload: derived scalar values keyed by
// plain string names (box lengths, final densities, uncertainties).
type Document map[string]float64

// Status is the explicit per-job completion record. A stage is complete
// once its tag appears here with the UTC time it was marked.
//
// This replaces the convention of treating the mere presence of a document
// key as proof of completion: payload and completion tracking are kept in
// separate files.
type Status struct {
	Completed map[string]time.Time `json:"completed"`
}

// Mark records stage as completed now. Marking twice keeps the first time.
func (s *Status) Mark(stage string) {
	if s.Completed == nil {
		s.Completed = make(map[string]time.Time)
	}
	if _, ok := s.Completed[stage]; !ok {
		s.Completed[stage] = time.Now().UTC()
	}
}

// Done reports whether stage has been marked complete.
func (s *Status) Done(stage string) bool {
	_, ok := s.Completed[stage]
	return ok
}
