package cassandra

import "fmt"

// Box is one simulation box. Edge lengths are in nm; boxes are cubic.
type Box struct {
	// Length is the cubic box edge in nm.
	Length float64

	// ConfigFile optionally names an xyz starting configuration for the
	// box, relative to the run directory. Empty means the engine inserts
	// molecules into an empty box.
	ConfigFile string

	// NMols is the number of molecules already present in ConfigFile.
	NMols int

	// NToAdd is the number of molecules the engine inserts before the run.
	NToAdd int
}

// System describes the molecular system handed to the engine: the boxes,
// the force-field file parameterizing the single species, and molecule
// placement.
type System struct {
	// Boxes holds one box for single-box ensembles, two for GEMC
	// (liquid first, vapor second).
	Boxes []Box

	// ForceFieldFile is the path of the force-field XML, relative to the
	// run directory or absolute.
	ForceFieldFile string
}

// Validate checks structural consistency ahead of input rendering.
func (s *System) Validate() error {
	if len(s.Boxes) < 1 || len(s.Boxes) > 2 {
		return fmt.Errorf("system must have 1 or 2 boxes, got %d", len(s.Boxes))
	}
	for i, b := range s.Boxes {
		if b.Length <= 0 {
			return fmt.Errorf("box %d edge length must be positive, got %g", i+1, b.Length)
		}
		if b.NMols < 0 || b.NToAdd < 0 {
			return fmt.Errorf("box %d molecule counts must be non-negative", i+1)
		}
		if b.NMols > 0 && b.ConfigFile == "" {
			return fmt.Errorf("box %d declares %d molecules present but no configuration file", i+1, b.NMols)
		}
	}
	if s.ForceFieldFile == "" {
		return fmt.Errorf("force-field file is required")
	}
	return nil
}

// TotalMolecules is the molecule count across all boxes, present plus
// to-insert. Move rebalancing scales with this.
func (s *System) TotalMolecules() int {
	n := 0
	for _, b := range s.Boxes {
		n += b.NMols + b.NToAdd
	}
	return n
}
