package cassandra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RunType selects the engine run mode.
type RunType string

const (
	Equilibration RunType = "equilibration"
	Production    RunType = "production"
)

// RunConfig carries the run-level keyword configuration for one engine
// invocation. Zero values for the optional cutoff overrides mean
// "not set" and are omitted from the rendered input.
type RunConfig struct {
	// Name is the run name; output files are <Name>.out.*.
	Name string

	// RestartName, when set, restarts from the named run's checkpoint.
	RestartName string

	Type   RunType
	Length int

	// Temperature in K. Pressure in bar, used only for NPT runs.
	Temperature float64
	Pressure    float64

	// Units is the run-length unit, normally "sweeps".
	Units         string
	StepsPerSweep int

	CoordFreq int
	PropFreq  int

	ChargeStyle string
	RcutMin     float64

	// Global vdW cutoff (Å) and optional per-box overrides. Box 2 in a
	// GEMC run is much larger and gets its own cutoffs.
	VdwCutoff        float64
	VdwCutoffBox1    float64
	VdwCutoffBox2    float64
	ChargeCutoffBox2 float64

	// Properties lists the thermo quantities written to the .prp logs, in
	// column order.
	Properties []string
}

// Validate checks the run configuration ahead of rendering.
func (c *RunConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("run name is required")
	}
	if c.Type != Equilibration && c.Type != Production {
		return fmt.Errorf("unknown run type %q", c.Type)
	}
	if c.Length < 1 {
		return fmt.Errorf("run length must be at least 1, got %d", c.Length)
	}
	if c.Temperature <= 0 {
		return fmt.Errorf("temperature must be positive, got %g", c.Temperature)
	}
	if c.Units == "sweeps" && c.StepsPerSweep < 1 {
		return fmt.Errorf("steps per sweep must be at least 1 when units are sweeps")
	}
	return nil
}

// Engine runs the Monte Carlo engine against a rendered input file.
//
// dir is the run directory; all engine outputs land there. Implementations
// must not mutate files other than their own outputs.
type Engine interface {
	Run(ctx context.Context, dir string, inputFile string) error
}

// Run renders the input file for cfg into dir and invokes the engine.
func Run(ctx context.Context, eng Engine, dir string, sys *System, moves *MoveSet, cfg RunConfig) error {
	if cfg.RestartName != "" {
		return fmt.Errorf("restart name set; use Restart for continuation runs")
	}
	return start(ctx, eng, dir, sys, moves, cfg)
}

// Restart renders a continuation input (restarting from cfg.RestartName's
// checkpoint) and invokes the engine. The physical run continues; only the
// run length, name, and sampling configuration change.
func Restart(ctx context.Context, eng Engine, dir string, sys *System, moves *MoveSet, cfg RunConfig) error {
	if cfg.RestartName == "" {
		return fmt.Errorf("restart requires a restart name")
	}
	return start(ctx, eng, dir, sys, moves, cfg)
}

func start(ctx context.Context, eng Engine, dir string, sys *System, moves *MoveSet, cfg RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid run config: %w", err)
	}
	if err := sys.Validate(); err != nil {
		return fmt.Errorf("invalid system: %w", err)
	}
	if err := moves.Validate(); err != nil {
		return fmt.Errorf("invalid move set: %w", err)
	}

	input, err := RenderInput(sys, moves, &cfg)
	if err != nil {
		return fmt.Errorf("render input: %w", err)
	}

	inputFile := cfg.Name + ".inp"
	if err := os.WriteFile(filepath.Join(dir, inputFile), []byte(input), 0644); err != nil {
		return fmt.Errorf("write input file: %w", err)
	}

	if err := eng.Run(ctx, dir, inputFile); err != nil {
		return fmt.Errorf("engine run %s: %w", cfg.Name, err)
	}
	return nil
}

// RenderInput renders the deterministic keyword-section input text for one
// engine invocation.
func RenderInput(sys *System, moves *MoveSet, cfg *RunConfig) (string, error) {
	var b strings.Builder

	section := func(name string, lines ...string) {
		fmt.Fprintf(&b, "# %s\n", name)
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteString("!------------------------------------------------------------\n\n")
	}

	section("Run_Name", cfg.Name)

	simType := "npt_mc"
	if moves.Ensemble == GEMC {
		simType = "gemc"
	}
	section("Sim_Type", simType)

	section("Nbr_Species", "1")
	section("Forcefield", sys.ForceFieldFile)
	section("Temperature_Info", fmt.Sprintf("%.4f", cfg.Temperature))
	if moves.Ensemble == NPT {
		section("Pressure_Info", fmt.Sprintf("%.4f", cfg.Pressure))
	}

	if cfg.ChargeStyle != "" {
		section("Charge_Style", cfg.ChargeStyle)
	}
	cutoffs := []string{}
	if cfg.RcutMin > 0 {
		cutoffs = append(cutoffs, fmt.Sprintf("rcut_min %.2f", cfg.RcutMin))
	}
	if cfg.VdwCutoff > 0 {
		cutoffs = append(cutoffs, fmt.Sprintf("vdw_cutoff %.2f", cfg.VdwCutoff))
	}
	if cfg.VdwCutoffBox1 > 0 {
		cutoffs = append(cutoffs, fmt.Sprintf("vdw_cutoff_box1 %.2f", cfg.VdwCutoffBox1))
	}
	if cfg.VdwCutoffBox2 > 0 {
		cutoffs = append(cutoffs, fmt.Sprintf("vdw_cutoff_box2 %.2f", cfg.VdwCutoffBox2))
	}
	if cfg.ChargeCutoffBox2 > 0 {
		cutoffs = append(cutoffs, fmt.Sprintf("charge_cutoff_box2 %.2f", cfg.ChargeCutoffBox2))
	}
	if len(cutoffs) > 0 {
		section("Cutoff_Info", cutoffs...)
	}

	moveLines := []string{
		fmt.Sprintf("prob_translation %.8f", moves.Translate),
		fmt.Sprintf("prob_rotation %.8f", moves.Rotate),
		fmt.Sprintf("prob_regrowth %.8f", moves.Regrow),
		fmt.Sprintf("prob_volume %.8f", moves.Volume),
	}
	if moves.Ensemble == GEMC {
		moveLines = append(moveLines, fmt.Sprintf("prob_swap %.8f", moves.Swap))
	}
	section("Move_Probability_Info", moveLines...)

	boxLines := []string{fmt.Sprintf("%d", len(sys.Boxes))}
	for _, box := range sys.Boxes {
		// Engine box dimensions are in Å.
		boxLines = append(boxLines, fmt.Sprintf("cubic %.3f", box.Length*10.0))
	}
	section("Box_Info", boxLines...)

	var startLines []string
	if cfg.RestartName != "" {
		startLines = []string{fmt.Sprintf("checkpoint %s.out.chk", cfg.RestartName)}
	} else {
		for _, box := range sys.Boxes {
			switch {
			case box.ConfigFile != "":
				startLines = append(startLines, fmt.Sprintf("read_config %d %s", box.NMols, box.ConfigFile))
			default:
				startLines = append(startLines, fmt.Sprintf("make_config %d", box.NToAdd))
			}
		}
	}
	section("Start_Type", startLines...)

	section("Run_Type", fmt.Sprintf("%s %d", cfg.Type, cfg.Length))

	simLines := []string{}
	if cfg.Units != "" {
		simLines = append(simLines, fmt.Sprintf("units %s", cfg.Units))
	}
	if cfg.StepsPerSweep > 0 {
		simLines = append(simLines, fmt.Sprintf("steps_per_sweep %d", cfg.StepsPerSweep))
	}
	simLines = append(simLines, fmt.Sprintf("run %d", cfg.Length))
	if cfg.CoordFreq > 0 {
		simLines = append(simLines, fmt.Sprintf("coord_freq %d", cfg.CoordFreq))
	}
	if cfg.PropFreq > 0 {
		simLines = append(simLines, fmt.Sprintf("prop_freq %d", cfg.PropFreq))
	}
	section("Simulation_Length_Info", simLines...)

	if len(cfg.Properties) > 0 {
		for i := range sys.Boxes {
			section(fmt.Sprintf("Property_Info %d", i+1), cfg.Properties...)
		}
	}

	b.WriteString("END\n")
	return b.String(), nil
}
