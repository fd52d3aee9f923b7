// Package vle defines the R-125 vapor-liquid-equilibrium workflow: the
// pipeline stages that take a job from bare state point through force-field
// generation, box sizing, liquid equilibration, configuration extraction,
// Gibbs-ensemble equilibration/production, and property aggregation.
package vle

import (
	"github.com/rsdefever/hfcs-fffit/pkg/cassandra"
)

// R-125 (pentafluoroethane, C2HF5) compound constants.
const (
	// molWeight is the molar mass in amu.
	molWeight = 120.02

	// atomsPerMolecule is the atom count of one R-125 molecule.
	atomsPerMolecule = 5
)

// Physical constants and unit conversions.
const (
	// kB is the Boltzmann constant in J/K.
	kB = 1.380649e-23

	// amuKg converts atomic mass units to kg.
	amuKg = 1.66053906660e-27

	// barPa converts bar to Pa.
	barPa = 1.0e5

	// mToNm converts meters to nm.
	mToNm = 1.0e9
)

// swapFactor scales the GEMC inter-box swap probability by total molecule
// count. Empirical tuning value targeting a usable swap acceptance-attempt
// rate; treat as opaque configuration.
const swapFactor = 4.0 / 0.05

// Stage identifiers, in dependency order.
const (
	StageForcefield = "create-forcefield"
	StageVapBoxL    = "calc-vapboxl"
	StageLiqBoxL    = "calc-liqboxl"
	StageLiqEquil   = "equilibrate-liqbox"
	StageExtract    = "extract-final-liqbox"
	StageGEMC       = "run-gemc"
	StageProps      = "calculate-props"
)

// Document keys produced by the pipeline.
const (
	keyVapBoxL     = "vapboxl"
	keyLiqBoxL     = "liqboxl"
	keyLiqFinalDim = "liqbox_final_dim"
)

// thermo property lists, in engine column order.
var (
	liqboxProps = []string{"energy_total", "pressure", "volume", "nmols", "mass_density"}
	gemcProps   = []string{"energy_total", "pressure", "volume", "nmols", "mass_density", "enthalpy"}
)

// Runtime carries the external collaborators the stages need.
type Runtime struct {
	// Engine invokes the Monte Carlo engine.
	Engine cassandra.Engine
}
