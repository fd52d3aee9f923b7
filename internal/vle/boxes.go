package vle

import (
	"fmt"
	"math"
)

// VaporBoxLength computes the initial cubic vapor-box edge in nm from the
// ideal-gas relation V = N kB T / P, rounded to 0.01 nm (0.1 Å).
func VaporBoxLength(nMols int, pressureBar, tempK float64) (float64, error) {
	if nMols < 1 {
		return 0, fmt.Errorf("molecule count must be at least 1, got %d", nMols)
	}
	if pressureBar <= 0 || tempK <= 0 {
		return 0, fmt.Errorf("pressure and temperature must be positive (P=%g T=%g)", pressureBar, tempK)
	}
	vol := float64(nMols) * kB * tempK / (pressureBar * barPa) // m^3
	return round2(math.Cbrt(vol) * mToNm), nil
}

// LiquidBoxLength computes the initial cubic liquid-box edge in nm from
// the target mass density, V = N m / rho, rounded to 0.01 nm.
func LiquidBoxLength(nMols int, densityKgM3 float64) (float64, error) {
	if nMols < 1 {
		return 0, fmt.Errorf("molecule count must be at least 1, got %d", nMols)
	}
	if densityKgM3 <= 0 {
		return 0, fmt.Errorf("density must be positive, got %g", densityKgM3)
	}
	molMass := molWeight * amuKg // kg per molecule
	vol := float64(nMols) * molMass / densityKgM3
	return round2(math.Cbrt(vol) * mToNm), nil
}

func round2(x float64) float64 {
	return math.Round(x*100.0) / 100.0
}
