package vle

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rsdefever/hfcs-fffit/pkg/cassandra"
	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
)

// extractFinalLiqbox harvests the equilibrated liquid configuration: the
// final trajectory frame (atom count + comment line + one line per atom)
// becomes liqbox.xyz, and the final box edge from the dimension log lands
// in the document.
//
// Faults here are fatal: without this artifact no downstream stage can
// proceed, so nothing is caught or downgraded.
func extractFinalLiqbox(ctx context.Context, job *jobstore.Job) error {
	nAtoms := job.SP.NLiq * atomsPerMolecule

	frame, err := tailLines(job.Fn("liqbox-equil/equil.out.xyz"), nAtoms+2)
	if err != nil {
		return fmt.Errorf("extract final frame: %w", err)
	}
	if err := os.WriteFile(job.Fn("liqbox.xyz"), []byte(frame), 0644); err != nil {
		return fmt.Errorf("write final configuration: %w", err)
	}

	dim, err := cassandra.FinalBoxLength(job.Fn("liqbox-equil/equil.out.H"))
	if err != nil {
		return fmt.Errorf("recover final box dimension: %w", err)
	}
	return job.DocSet(keyLiqFinalDim, dim)
}

// tailLines returns the last n lines of the file at path, newline
// terminated.
func tailLines(path string, n int) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) < n {
		return "", fmt.Errorf("%s has %d lines, need %d", path, len(lines), n)
	}
	return strings.Join(lines[len(lines)-n:], "\n") + "\n", nil
}
