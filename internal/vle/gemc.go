package vle

import (
	"context"
	"fmt"

	"github.com/rsdefever/hfcs-fffit/pkg/cassandra"
	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
	"github.com/rsdefever/hfcs-fffit/pkg/pipeline"
)

// runGEMC runs the two-box Gibbs-ensemble stage: an equilibration phase
// followed by a production restart of the same physical run. Outputs land
// at the job root.
//
// Box 2 is much larger than box 1, so it carries its own cutoff and
// charge-cutoff configuration.
func (rt *Runtime) runGEMC(ctx context.Context, job *jobstore.Job) error {
	finalDim, ok := job.DocGet(keyLiqFinalDim)
	if !ok {
		return fmt.Errorf("document key %s is missing", keyLiqFinalDim)
	}
	vapBoxL, ok := job.DocGet(keyVapBoxL)
	if !ok {
		return fmt.Errorf("document key %s is missing", keyVapBoxL)
	}

	sys := &cassandra.System{
		Boxes: []cassandra.Box{
			{Length: finalDim, ConfigFile: "liqbox.xyz", NMols: job.SP.NLiq},
			{Length: vapBoxL, NToAdd: job.SP.NVap},
		},
		ForceFieldFile: job.Fn("ff.xml"),
	}

	moves, err := cassandra.DefaultMoves(cassandra.GEMC)
	if err != nil {
		return err
	}
	nTotal := sys.TotalMolecules()
	if err := moves.SetVolumeProb(1.0 / float64(nTotal)); err != nil {
		return err
	}
	if err := moves.SetSwapProb(swapFactor / float64(nTotal)); err != nil {
		return err
	}

	cfg := cassandra.RunConfig{
		Name:             "equil",
		Type:             cassandra.Equilibration,
		Length:           job.SP.NStepsEq,
		Temperature:      job.SP.T,
		Units:            "sweeps",
		StepsPerSweep:    nTotal,
		CoordFreq:        500,
		PropFreq:         10,
		ChargeStyle:      "ewald",
		RcutMin:          1.0,
		VdwCutoffBox1:    12.0,
		VdwCutoffBox2:    25.0,
		ChargeCutoffBox2: 25.0,
		Properties:       gemcProps,
	}

	// A crash between phases leaves the equilibration logs behind; skip
	// straight to production when they already read complete.
	if GEMCEquilComplete(job) != pipeline.Complete {
		if err := cassandra.Run(ctx, rt.Engine, job.Dir(), sys, moves, cfg); err != nil {
			return fmt.Errorf("gemc equilibration: %w", err)
		}
	}

	cfg.Name = "prod"
	cfg.RestartName = "equil"
	cfg.Type = cassandra.Production
	cfg.Length = job.SP.NStepsProd
	if err := cassandra.Restart(ctx, rt.Engine, job.Dir(), sys, moves, cfg); err != nil {
		return fmt.Errorf("gemc production: %w", err)
	}
	return nil
}
