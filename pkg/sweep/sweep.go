// Package sweep loads parameter-sweep manifests.
//
// A sweep manifest is a YAML file declaring shared defaults plus a list of
// state-point overrides; it expands into one job state point per entry.
//
// Example manifest:
//
//	version: "1.0"
//	defaults:
//	  P: 1.0
//	  N_liq: 500
//	  N_vap: 500
//	  expt_liq_density: 1198.0
//	  nsteps_liqeq: 5000
//	  nsteps_eq: 10000
//	  nsteps_prod: 100000
//	  forcefield:
//	    C1: {sigma: 0.340, epsilon: 0.451}
//	    C2: {sigma: 0.340, epsilon: 0.458}
//	    F1: {sigma: 0.312, epsilon: 0.255}
//	    F2: {sigma: 0.312, epsilon: 0.255}
//	    H1: {sigma: 0.257, epsilon: 0.066}
//	statepoints:
//	  - T: 280.0
//	  - T: 300.0
//	  - T: 320.0
//	    expt_liq_density: 1055.0
package sweep

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
)

// SupportedVersion is the manifest schema version this loader accepts.
const SupportedVersion = "1.0"

// Manifest is a parsed sweep manifest. StatePoints entries stay as raw
// nodes until defaults are applied.
type Manifest struct {
	Version     string              `yaml:"version"`
	Defaults    jobstore.StatePoint `yaml:"defaults"`
	StatePoints []yaml.Node         `yaml:"statepoints"`
}

// Load reads the manifest at path and expands it into validated state
// points, one per entry, with defaults applied.
func Load(path string) ([]jobstore.StatePoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("sweep manifest not found: %s", path)
		}
		return nil, fmt.Errorf("read sweep manifest: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and expands a manifest from raw YAML.
//
// Unknown fields are rejected so a typo in a state-point key fails loudly
// instead of silently falling back to the default.
func LoadFromBytes(data []byte) ([]jobstore.StatePoint, error) {
	var m Manifest
	if err := strictUnmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse sweep manifest: %w", err)
	}

	if m.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported manifest version %q (want %q)", m.Version, SupportedVersion)
	}
	if len(m.StatePoints) == 0 {
		return nil, fmt.Errorf("sweep manifest declares no statepoints")
	}

	out := make([]jobstore.StatePoint, 0, len(m.StatePoints))
	for i, node := range m.StatePoints {
		// Round-trip the entry through YAML so it can be strict-decoded
		// on top of a copy of the defaults.
		raw, err := yaml.Marshal(&node)
		if err != nil {
			return nil, fmt.Errorf("statepoint %d: %w", i, err)
		}
		sp := copyStatePoint(&m.Defaults)
		if err := strictUnmarshal(raw, &sp); err != nil {
			return nil, fmt.Errorf("statepoint %d: %w", i, err)
		}
		if err := sp.Validate(); err != nil {
			return nil, fmt.Errorf("statepoint %d: %w", i, err)
		}
		out = append(out, sp)
	}
	return out, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// copyStatePoint deep-copies a state point so per-entry overrides never
// alias the shared defaults map.
func copyStatePoint(sp *jobstore.StatePoint) jobstore.StatePoint {
	out := *sp
	if sp.ForceField != nil {
		out.ForceField = make(map[string]jobstore.LJ, len(sp.ForceField))
		for k, v := range sp.ForceField {
			out.ForceField[k] = v
		}
	}
	return out
}
