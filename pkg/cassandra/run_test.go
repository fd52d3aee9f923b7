package cassandra

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingEngine struct {
	dir   string
	input string
	calls int
}

func (r *recordingEngine) Run(ctx context.Context, dir string, inputFile string) error {
	r.dir = dir
	r.input = inputFile
	r.calls++
	return nil
}

func nptFixture() (*System, *MoveSet, RunConfig) {
	sys := &System{
		Boxes:          []Box{{Length: 4.36, NToAdd: 500}},
		ForceFieldFile: "ff.xml",
	}
	moves, _ := DefaultMoves(NPT)
	cfg := RunConfig{
		Name:          "equil",
		Type:          Equilibration,
		Length:        5000,
		Temperature:   300.0,
		Pressure:      1.0,
		Units:         "sweeps",
		StepsPerSweep: 500,
		CoordFreq:     500,
		PropFreq:      10,
		ChargeStyle:   "ewald",
		RcutMin:       1.0,
		VdwCutoff:     12.0,
		Properties:    []string{"energy_total", "pressure", "volume", "nmols", "mass_density"},
	}
	return sys, moves, cfg
}

func TestRenderInput_NPT(t *testing.T) {
	sys, moves, cfg := nptFixture()

	input, err := RenderInput(sys, moves, &cfg)
	if err != nil {
		t.Fatalf("RenderInput() error: %v", err)
	}

	for _, want := range []string{
		"# Run_Name\nequil\n",
		"# Sim_Type\nnpt_mc\n",
		"# Temperature_Info\n300.0000\n",
		"# Pressure_Info\n1.0000\n",
		"cubic 43.600",
		"make_config 500",
		"# Run_Type\nequilibration 5000\n",
		"units sweeps",
		"steps_per_sweep 500",
		"prob_volume 0.02000000",
		"mass_density",
		"END\n",
	} {
		if !strings.Contains(input, want) {
			t.Fatalf("rendered input missing %q\n%s", want, input)
		}
	}
}

func TestRenderInput_GEMCRestart(t *testing.T) {
	sys := &System{
		Boxes: []Box{
			{Length: 4.362, ConfigFile: "liqbox.xyz", NMols: 500},
			{Length: 27.46, NToAdd: 500},
		},
		ForceFieldFile: "ff.xml",
	}
	moves, _ := DefaultMoves(GEMC)
	cfg := RunConfig{
		Name:             "prod",
		RestartName:      "equil",
		Type:             Production,
		Length:           100000,
		Temperature:      300.0,
		Units:            "sweeps",
		StepsPerSweep:    1000,
		ChargeStyle:      "ewald",
		RcutMin:          1.0,
		VdwCutoffBox1:    12.0,
		VdwCutoffBox2:    25.0,
		ChargeCutoffBox2: 25.0,
		Properties:       []string{"energy_total", "pressure", "volume", "nmols", "mass_density", "enthalpy"},
	}

	input, err := RenderInput(sys, moves, &cfg)
	if err != nil {
		t.Fatalf("RenderInput() error: %v", err)
	}

	for _, want := range []string{
		"# Sim_Type\ngemc\n",
		"checkpoint equil.out.chk",
		"vdw_cutoff_box2 25.00",
		"charge_cutoff_box2 25.00",
		"prob_swap",
		"# Property_Info 2\n",
	} {
		if !strings.Contains(input, want) {
			t.Fatalf("rendered input missing %q", want)
		}
	}
	if strings.Contains(input, "read_config") {
		t.Fatalf("restart input must start from checkpoint, not configs")
	}
	if strings.Contains(input, "# Pressure_Info") {
		t.Fatalf("gemc input must not carry a pressure section")
	}
}

func TestRun_WritesInputAndInvokesEngine(t *testing.T) {
	sys, moves, cfg := nptFixture()
	dir := t.TempDir()
	eng := &recordingEngine{}

	if err := Run(context.Background(), eng, dir, sys, moves, cfg); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if eng.calls != 1 || eng.dir != dir || eng.input != "equil.inp" {
		t.Fatalf("engine invocation wrong: %+v", eng)
	}

	b, err := os.ReadFile(filepath.Join(dir, "equil.inp"))
	if err != nil {
		t.Fatalf("input file not written: %v", err)
	}
	if !strings.Contains(string(b), "# Run_Name\nequil\n") {
		t.Fatalf("input file content wrong")
	}
}

func TestRunRestart_NameGuards(t *testing.T) {
	sys, moves, cfg := nptFixture()
	dir := t.TempDir()
	eng := &recordingEngine{}

	cfg.RestartName = "equil"
	if err := Run(context.Background(), eng, dir, sys, moves, cfg); err == nil {
		t.Fatalf("Run must reject restart configs")
	}

	cfg.RestartName = ""
	if err := Restart(context.Background(), eng, dir, sys, moves, cfg); err == nil {
		t.Fatalf("Restart must require a restart name")
	}
}
