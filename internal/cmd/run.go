package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rsdefever/hfcs-fffit/internal/observability"
	"github.com/rsdefever/hfcs-fffit/internal/vle"
	"github.com/rsdefever/hfcs-fffit/pkg/cassandra"
	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
	"github.com/rsdefever/hfcs-fffit/pkg/output"
	"github.com/rsdefever/hfcs-fffit/pkg/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the workflow across workspace jobs",
	Long: `Run every eligible stage of the workflow for each workspace job,
or for a single job given --job. Completed stages are detected from
their on-disk outputs and skipped, so interrupting and re-running is
always safe.

Example:
  fffit run
  fffit run --job 9bb8d0cbd496d7832a007dd9e84062e0
  fffit run --workers 8 --output events.jsonl`,
	RunE: runRun,
}

var (
	runJobID  string
	runOutput string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runJobID, "job", "j", "", "Run a single job by ID")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write JSONL event records to file")
	runCmd.Flags().IntP("workers", "w", 0, "Number of jobs processed concurrently")
	_ = viper.BindPFlag("workers", runCmd.Flags().Lookup("workers"))
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store := openStore()

	jobs, err := selectJobs(store, runJobID)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs in workspace %s (run fffit init first)", store.RootDir())
	}

	runID := uuid.New().String()
	events, cleanup, err := createEventWriter(runOutput, runID)
	if err != nil {
		observability.CLILogger.Error("Failed to create event output", zap.Error(err))
		return fmt.Errorf("create event output: %w", err)
	}
	defer cleanup()

	engine := &cassandra.ExecEngine{
		Path:    viper.GetString("engine.executable"),
		Threads: viper.GetInt("engine.threads"),
	}
	wf, err := vle.New(&vle.Runtime{Engine: engine})
	if err != nil {
		return fmt.Errorf("assemble workflow: %w", err)
	}

	driver := pipeline.NewDriver(wf, pipeline.Config{
		Workers: viper.GetInt("workers"),
		Logger:  observability.CLILogger,
		Events:  events,
	})

	observability.CLILogger.Info("Starting run",
		zap.String("run_id", runID),
		zap.String("workspace", store.RootDir()),
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", viper.GetInt("workers")))

	sum := driver.RunAll(ctx, jobs)

	observability.CLILogger.Info("Run finished",
		zap.String("run_id", runID),
		zap.Int("jobs", sum.Jobs),
		zap.Int("jobs_complete", sum.JobsComplete),
		zap.Int("stages_run", sum.StagesRun),
		zap.Int("errors", sum.Errors),
		zap.Duration("duration", sum.Duration))

	fmt.Printf("run %s: %d/%d jobs complete, %d stages run, %d errors (%s)\n",
		runID, sum.JobsComplete, sum.Jobs, sum.StagesRun, sum.Errors,
		sum.Duration.Round(time.Millisecond))

	if sum.Errors > 0 {
		return fmt.Errorf("%d of %d jobs failed", sum.Errors, sum.Jobs)
	}
	return nil
}

// selectJobs resolves --job to a single-element slice, or lists the whole
// workspace when no ID was given.
func selectJobs(store *jobstore.Store, jobID string) ([]*jobstore.Job, error) {
	if jobID != "" {
		job, err := store.Open(jobID)
		if err != nil {
			return nil, fmt.Errorf("open job %s: %w", jobID, err)
		}
		return []*jobstore.Job{job}, nil
	}
	jobs, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// createEventWriter opens the JSONL event sink, or a discard writer when
// no output path was requested.
func createEventWriter(path, runID string) (output.Writer, func(), error) {
	if path == "" {
		return output.Discard{}, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := output.NewJSONLWriter(f, runID)
	cleanup := func() {
		_ = w.Close()
		_ = f.Close()
	}
	return w, cleanup, nil
}
