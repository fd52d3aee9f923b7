// Package cassandra is a thin client for the Cassandra Monte Carlo engine:
// move-probability sets, system assembly, input rendering, engine
// invocation, and parsers for the engine's flat-file output logs.
package cassandra

import (
	"fmt"
	"math"
)

// Ensemble selects the Monte Carlo move set.
type Ensemble string

const (
	// NPT is single-box constant-pressure Monte Carlo.
	NPT Ensemble = "npt"

	// GEMC is two-box Gibbs-ensemble Monte Carlo.
	GEMC Ensemble = "gemc"
)

// MoveSet holds the per-move attempt probabilities for a run. The
// probabilities always sum to 1; rebalancing a move reassigns the
// displaced mass to translation.
type MoveSet struct {
	Ensemble Ensemble

	Translate float64
	Rotate    float64
	Regrow    float64
	Volume    float64
	Swap      float64
}

// DefaultMoves returns the stock move probabilities for an ensemble.
//
// The defaults are engine conventions, not derived quantities. Both sets
// sum to exactly 1.
func DefaultMoves(e Ensemble) (*MoveSet, error) {
	switch e {
	case NPT:
		return &MoveSet{
			Ensemble:  NPT,
			Translate: 0.33,
			Rotate:    0.33,
			Regrow:    0.32,
			Volume:    0.02,
		}, nil
	case GEMC:
		return &MoveSet{
			Ensemble:  GEMC,
			Translate: 0.29,
			Rotate:    0.29,
			Regrow:    0.30,
			Volume:    0.02,
			Swap:      0.10,
		}, nil
	default:
		return nil, fmt.Errorf("unknown ensemble %q", e)
	}
}

// SetVolumeProb rebalances the volume-move probability to p, folding the
// displaced mass into translation. The stock volume-move frequency is
// miscalibrated for very large or very small systems; callers typically
// pass 1/N.
//
// The rebalance is unconditional, so the total always stays 1. A p large
// enough to overdraw the translation mass leaves the set unphysical;
// Validate reports that when the run is assembled.
func (m *MoveSet) SetVolumeProb(p float64) error {
	if p <= 0 || p > 1 {
		return fmt.Errorf("volume probability must be in (0, 1], got %g", p)
	}
	m.Translate += m.Volume - p
	m.Volume = p
	return nil
}

// SetSwapProb rebalances the inter-box swap probability to p, folding the
// displaced mass into translation. Only meaningful for GEMC. Same
// overdraw semantics as SetVolumeProb.
func (m *MoveSet) SetSwapProb(p float64) error {
	if m.Ensemble != GEMC {
		return fmt.Errorf("swap moves are only defined for gemc, not %s", m.Ensemble)
	}
	if p <= 0 || p > 1 {
		return fmt.Errorf("swap probability must be in (0, 1], got %g", p)
	}
	m.Translate += m.Swap - p
	m.Swap = p
	return nil
}

// Total returns the sum of all move probabilities.
func (m *MoveSet) Total() float64 {
	return m.Translate + m.Rotate + m.Regrow + m.Volume + m.Swap
}

// Validate checks that probabilities are non-negative and sum to 1 within
// floating-point tolerance.
func (m *MoveSet) Validate() error {
	for name, p := range map[string]float64{
		"translate": m.Translate,
		"rotate":    m.Rotate,
		"regrow":    m.Regrow,
		"volume":    m.Volume,
		"swap":      m.Swap,
	} {
		if p < 0 {
			return fmt.Errorf("%s probability is negative: %g", name, p)
		}
	}
	if m.Ensemble != GEMC && m.Swap != 0 {
		return fmt.Errorf("swap probability set for non-gemc ensemble")
	}
	if total := m.Total(); math.Abs(total-1.0) > 1e-9 {
		return fmt.Errorf("move probabilities sum to %g, want 1", total)
	}
	return nil
}
