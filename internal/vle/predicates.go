package vle

import (
	"os"

	"github.com/rsdefever/hfcs-fffit/pkg/cassandra"
	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
	"github.com/rsdefever/hfcs-fffit/pkg/pipeline"
)

// runComplete checks whether a property log records its final step at
// wantSteps. A missing, truncated, or malformed log is Unknown, never an
// error: the scheduler retries the stage instead of failing the job.
func runComplete(path string, skipHeader, wantSteps int) pipeline.Completion {
	rows, err := cassandra.ReadPropertyLog(path, skipHeader)
	if err != nil {
		return pipeline.Unknown
	}
	if cassandra.LastStep(rows) == wantSteps {
		return pipeline.Complete
	}
	return pipeline.Incomplete
}

// LiqboxEquilibrated reports whether the liquid-box equilibration ran to
// its configured length.
func LiqboxEquilibrated(job *jobstore.Job) pipeline.Completion {
	return runComplete(job.Fn("liqbox-equil/equil.out.prp"), 3, job.SP.NStepsLiqEq)
}

// GEMCEquilComplete reports whether the GEMC equilibration phase ran to
// its configured length.
func GEMCEquilComplete(job *jobstore.Job) pipeline.Completion {
	return runComplete(job.Fn("equil.out.box1.prp"), 2, job.SP.NStepsEq)
}

// GEMCProdComplete reports whether the GEMC production phase ran to its
// configured length.
func GEMCProdComplete(job *jobstore.Job) pipeline.Completion {
	return runComplete(job.Fn("prod.out.box1.prp"), 3, job.SP.NStepsProd)
}

// fileExists is a postcondition helper: Complete when the file is present,
// Unknown when the check itself failed for a reason other than absence.
func fileExists(path string) pipeline.Completion {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return pipeline.Incomplete
		}
		return pipeline.Unknown
	}
	return pipeline.Complete
}
