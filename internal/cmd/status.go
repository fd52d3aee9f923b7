package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rsdefever/hfcs-fffit/internal/vle"
	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
	"github.com/rsdefever/hfcs-fffit/pkg/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-stage workflow status for workspace jobs",
	Long: `Show the completion state of every workflow stage for each job.

Stage states are evaluated from the on-disk outputs, so the report is
accurate even for work done outside this tool or on another machine.
"unknown" means the stage's outputs exist but could not be read.

Example:
  fffit status
  fffit status --job 9bb8d0cbd496d7832a007dd9e84062e0`,
	RunE: runStatus,
}

var statusJobID string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusJobID, "job", "j", "", "Show a single job by ID")
}

func runStatus(cmd *cobra.Command, args []string) error {
	store := openStore()

	jobs, err := selectJobs(store, statusJobID)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Printf("no jobs in workspace %s\n", store.RootDir())
		return nil
	}

	// The postcondition predicates never invoke the engine, so the
	// workflow can be assembled without one.
	wf, err := vle.New(&vle.Runtime{})
	if err != nil {
		return fmt.Errorf("assemble workflow: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tT (K)\tP (bar)\tSTAGE\tSTATE\tCOMPLETED")
	for _, job := range jobs {
		printJobStatus(w, wf, job)
	}
	return w.Flush()
}

func printJobStatus(w *tabwriter.Writer, wf *pipeline.Workflow, job *jobstore.Job) {
	for i, stage := range wf.Stages() {
		id := job.ID
		tcol := fmt.Sprintf("%.2f", job.SP.T)
		pcol := fmt.Sprintf("%.2f", job.SP.P)
		if i > 0 {
			id, tcol, pcol = "", "", ""
		}

		state := stage.Post(job)
		done := ""
		if state == pipeline.Complete && job.StageDone(string(stage.ID)) {
			done = "recorded"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			id, tcol, pcol, stage.ID, state, done)
	}
}
