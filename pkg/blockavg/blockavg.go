// Package blockavg estimates the statistical uncertainty of correlated
// time series by blocking.
//
// The series is repeatedly coarse-grained into geometrically larger blocks
// (each level averages adjacent pairs). At every level the package reports
// the mean estimate, the variance estimate of the mean, and the error of
// that variance estimate. For a correlated series the variance estimate
// grows with block size until the blocks decorrelate; the conservative
// uncertainty is the maximum standard deviation across levels.
package blockavg

import (
	"fmt"
	"io"
	"math"
)

// minBlocks is the fewest blocks a level may have for its variance
// estimate to be meaningful.
const minBlocks = 4

// Result holds the per-level blocking estimates, indexed by the number of
// pair-averaging operations applied (block size 2^i).
type Result struct {
	Means   []float64
	Vars    []float64
	VarErrs []float64
}

// BlockAverage runs the blocking analysis over series. The series must
// hold at least minBlocks points.
func BlockAverage(series []float64) (Result, error) {
	if len(series) < minBlocks {
		return Result{}, fmt.Errorf("series too short for block averaging: %d points, need %d", len(series), minBlocks)
	}

	var res Result
	x := make([]float64, len(series))
	copy(x, series)

	for len(x) >= minBlocks {
		n := float64(len(x))

		mean := 0.0
		for _, v := range x {
			mean += v
		}
		mean /= n

		// Biased sample variance; the variance of the mean divides by n-1.
		c0 := 0.0
		for _, v := range x {
			d := v - mean
			c0 += d * d
		}
		c0 /= n

		varEst := c0 / (n - 1)
		varErr := varEst * math.Sqrt(2.0/(n-1))

		res.Means = append(res.Means, mean)
		res.Vars = append(res.Vars, varEst)
		res.VarErrs = append(res.VarErrs, varErr)

		// Coarse-grain: average adjacent pairs, dropping a trailing odd
		// point.
		next := make([]float64, len(x)/2)
		for i := range next {
			next[i] = 0.5 * (x[2*i] + x[2*i+1])
		}
		x = next
	}

	return res, nil
}

// MaxStdDev returns the maximum standard deviation across block sizes:
// the reported uncertainty of the series mean.
func (r Result) MaxStdDev() float64 {
	max := 0.0
	for _, v := range r.Vars {
		if sd := math.Sqrt(v); sd > max {
			max = sd
		}
	}
	return max
}

// WriteTable writes the blocking table in the auxiliary-file format:
// a header line followed by one tab-separated row per block-size index.
func (r Result) WriteTable(w io.Writer) error {
	if _, err := io.WriteString(w, "# nblk_ops, mean, vars, vars_err\n"); err != nil {
		return err
	}
	for i := range r.Means {
		if _, err := fmt.Fprintf(w, "%d\t%v\t%v\t%v\n", i, r.Means[i], r.Vars[i], r.VarErrs[i]); err != nil {
			return err
		}
	}
	return nil
}
