// Package forcefield renders the parameterized R-125 force-field XML.
//
// The bonded tables (harmonic bonds, harmonic angles, periodic torsions)
// and the partial charges are fixed chemistry-derived constants; only the
// per-atom-type Lennard-Jones sigma/epsilon values vary between
// optimization rounds and are substituted from job parameters.
package forcefield

import (
	"fmt"
	"os"
)

// LJ is a sigma/epsilon pair in nm and kJ/mol.
type LJ struct {
	Sigma   float64
	Epsilon float64
}

// requiredTypes are the atom types the template substitutes.
var requiredTypes = []string{"C1", "C2", "F1", "F2", "H1"}

const template = `<ForceField>
 <AtomTypes>
  <Type name="C1" class="c3" element="C" mass="12.011" def="C(C)(H)(F)(F)" desc="carbon bonded to 2 Fs, a H, and another carbon"/>
  <Type name="C2" class="c3" element="C" mass="12.011" def="C(C)(F)(F)(F)" desc="carbon bonded to 3 Fs and another carbon"/>
  <Type name="F1" class="f" element="F" mass="18.998" def="FC(C)(F)H" desc="F bonded to C1"/>
  <Type name="F2" class="f" element="F" mass="18.998" def="FC(C)(F)F" desc="F bonded to C2"/>
  <Type name="H1" class="h2" element="H" mass="1.008" def="H(C)" desc="single H bonded to C1"/>
 </AtomTypes>
 <HarmonicBondForce>
  <Bond class1="c3" class2="c3" length="0.15375" k="251793.12"/>
  <Bond class1="c3" class2="f" length="0.13497" k="298653.92"/>
  <Bond class1="c3" class2="h2" length="0.10961" k="277566.56"/>
 </HarmonicBondForce>
 <HarmonicAngleForce>
  <Angle class1="c3" class2="c3" class3="f" angle="1.9065976748786053" k="553.1248"/>
  <Angle class1="c3" class2="c3" class3="h2" angle="1.9237019015481498" k="386.6016"/>
  <Angle class1="f" class2="c3" class3="f" angle="1.8737854849411122" k="593.2912"/>
  <Angle class1="f" class2="c3" class3="h2" angle="1.898743693244631" k="427.6048"/>
 </HarmonicAngleForce>
 <PeriodicTorsionForce>
  <Proper class1="f" class2="c3" class3="c3" class4="f" periodicity1="3" k1="0.0" phase1="0.0" periodicity2="1" k2="5.0208" phase2="3.141592653589793"/>
  <Proper class1="" class2="c3" class3="c3" class4="" periodicity1="3" k1="0.6508444444444444" phase1="0.0"/>
 </PeriodicTorsionForce>
 <NonbondedForce coulomb14scale="0.833333" lj14scale="0.5">
  <Atom type="C1" charge="0.224067"  sigma="%0.6f" epsilon="%0.6f"/>
  <Atom type="C2" charge="0.500886"  sigma="%0.6f" epsilon="%0.6f"/>
  <Atom type="F1" charge="-0.167131" sigma="%0.6f" epsilon="%0.6f"/>
  <Atom type="F2" charge="-0.170758" sigma="%0.6f" epsilon="%0.6f"/>
  <Atom type="H1" charge="0.121583" sigma="%0.6f" epsilon="%0.6f"/>
 </NonbondedForce>
</ForceField>
`

// XML renders the force-field description with the given per-atom-type LJ
// parameters substituted into the non-bonded table.
//
// All five atom types must be present with positive values; a missing or
// non-positive entry is the job's missing-parameter fault.
func XML(params map[string]LJ) (string, error) {
	for _, at := range requiredTypes {
		lj, ok := params[at]
		if !ok {
			return "", fmt.Errorf("missing LJ parameters for atom type %s", at)
		}
		if lj.Sigma <= 0 || lj.Epsilon <= 0 {
			return "", fmt.Errorf("non-positive LJ parameters for atom type %s", at)
		}
	}
	return fmt.Sprintf(template,
		params["C1"].Sigma, params["C1"].Epsilon,
		params["C2"].Sigma, params["C2"].Epsilon,
		params["F1"].Sigma, params["F1"].Epsilon,
		params["F2"].Sigma, params["F2"].Epsilon,
		params["H1"].Sigma, params["H1"].Epsilon,
	), nil
}

// Write renders the force field and writes it to path. The file is written
// once per job and treated as immutable afterwards.
func Write(path string, params map[string]LJ) error {
	content, err := XML(params)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write forcefield file: %w", err)
	}
	return nil
}
