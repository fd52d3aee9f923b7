package vle

import (
	"context"
	"fmt"
	"os"

	"github.com/rsdefever/hfcs-fffit/pkg/blockavg"
	"github.com/rsdefever/hfcs-fffit/pkg/cassandra"
	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
)

// Property-log columns, 1-based: step counter first, then the configured
// thermo properties in order.
const (
	pressureCol = 3
	nMolsCol    = 5
	densityCol  = 6
	enthalpyCol = 7
)

// propNames are the seven aggregated quantities, in output order.
var propNames = []string{
	"liq_density",
	"vap_density",
	"Pvap",
	"liq_enthalpy",
	"vap_enthalpy",
	"nmols_liq",
	"nmols_vap",
}

// calculateProps reduces the production trajectories of both boxes to
// scalar means and block-averaged uncertainties, persisting all fourteen
// derived values to the document and one blocking table per quantity.
func calculateProps(ctx context.Context, job *jobstore.Job) error {
	box1, err := cassandra.ReadPropertyLog(job.Fn("prod.out.box1.prp"), 0)
	if err != nil {
		return fmt.Errorf("read box 1 production log: %w", err)
	}
	box2, err := cassandra.ReadPropertyLog(job.Fn("prod.out.box2.prp"), 0)
	if err != nil {
		return fmt.Errorf("read box 2 production log: %w", err)
	}

	series := make(map[string][]float64, len(propNames))
	for name, src := range map[string]struct {
		rows [][]float64
		col  int
	}{
		"liq_density":  {box1, densityCol},
		"vap_density":  {box2, densityCol},
		"Pvap":         {box2, pressureCol},
		"liq_enthalpy": {box1, enthalpyCol},
		"vap_enthalpy": {box2, enthalpyCol},
		"nmols_liq":    {box1, nMolsCol},
		"nmols_vap":    {box2, nMolsCol},
	} {
		s, err := cassandra.Column(src.rows, src.col)
		if err != nil {
			return fmt.Errorf("extract %s: %w", name, err)
		}
		series[name] = s
	}

	for _, name := range propNames {
		s := series[name]

		if err := job.DocSet(name, mean(s)); err != nil {
			return err
		}

		res, err := blockavg.BlockAverage(s)
		if err != nil {
			return fmt.Errorf("block average %s: %w", name, err)
		}
		if err := writeBlockTable(job.Fn(name+"_blk_avg.txt"), res); err != nil {
			return err
		}
		if err := job.DocSet(name+"_unc", res.MaxStdDev()); err != nil {
			return err
		}
	}
	return nil
}

func mean(s []float64) float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

func writeBlockTable(path string, res blockavg.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create blocking table: %w", err)
	}
	if err := res.WriteTable(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write blocking table: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close blocking table: %w", err)
	}
	return nil
}
