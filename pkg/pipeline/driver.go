package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rsdefever/hfcs-fffit/pkg/jobstore"
	"github.com/rsdefever/hfcs-fffit/pkg/output"
)

// Driver executes a workflow over jobs.
//
// Within a job, execution is strictly one stage at a time. Across jobs the
// driver fans out over a bounded worker pool; jobs share no mutable state.
type Driver struct {
	wf      *Workflow
	log     *zap.Logger
	events  output.Writer
	workers int
}

// Config configures a Driver.
type Config struct {
	// Workers is the number of jobs processed concurrently. Default: 4.
	Workers int

	// Logger receives structured progress logs. Default: no-op.
	Logger *zap.Logger

	// Events receives JSONL event records. Default: discard.
	Events output.Writer
}

// NewDriver creates a driver for wf.
func NewDriver(wf *Workflow, cfg Config) *Driver {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Events == nil {
		cfg.Events = output.Discard{}
	}
	return &Driver{wf: wf, log: cfg.Logger, events: cfg.Events, workers: cfg.Workers}
}

// JobResult reports one job's outcome from a driver pass.
type JobResult struct {
	JobID     string
	StagesRun int
	Complete  bool
	Err       error
}

// Summary aggregates results across all jobs of a run.
type Summary struct {
	Jobs         int
	JobsComplete int
	StagesRun    int
	Errors       int
	Duration     time.Duration
}

// RunJob drives a single job to completion or until no further progress
// can be made.
//
// Each pass walks the stages in dependency order and executes every stage
// whose predecessors are Complete and whose own postcondition is not. A
// stage whose postcondition still is not Complete after running (Unknown
// included) stops being scheduled this invocation; the absence of its
// completion is the retry signal for the next scheduling pass. A stage
// error ends the job's passes but is not fatal to other jobs.
func (d *Driver) RunJob(ctx context.Context, job *jobstore.Job) JobResult {
	res := JobResult{JobID: job.ID}
	ran := make(map[StageID]bool)

	for {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		progress := false
		for _, stage := range d.wf.Stages() {
			state := stage.Post(job)
			if state == Complete {
				// Stamp the status record lazily so completion survives
				// even when the postcondition was met out of band.
				if !job.StageDone(string(stage.ID)) {
					if err := job.MarkStage(string(stage.ID)); err != nil {
						res.Err = fmt.Errorf("mark stage %s: %w", stage.ID, err)
						return res
					}
				}
				continue
			}
			if ran[stage.ID] || !d.wf.Ready(stage.ID, job) {
				continue
			}

			if err := d.runStage(ctx, job, &stage); err != nil {
				res.Err = fmt.Errorf("stage %s: %w", stage.ID, err)
				return res
			}
			ran[stage.ID] = true
			res.StagesRun++
			progress = true
		}

		if !progress {
			break
		}
	}

	res.Complete = d.jobComplete(job)
	return res
}

func (d *Driver) runStage(ctx context.Context, job *jobstore.Job, stage *Stage) error {
	d.log.Info("Running stage",
		zap.String("job", job.ID),
		zap.String("stage", string(stage.ID)))
	_ = d.events.WriteStage(&output.StageRecord{
		JobID:  job.ID,
		Stage:  string(stage.ID),
		Status: output.StageStarted,
	})

	start := time.Now()
	err := stage.Run(ctx, job)
	elapsed := time.Since(start)

	if err != nil {
		d.log.Error("Stage failed",
			zap.String("job", job.ID),
			zap.String("stage", string(stage.ID)),
			zap.Error(err))
		_ = d.events.WriteStage(&output.StageRecord{
			JobID:     job.ID,
			Stage:     string(stage.ID),
			Status:    output.StageFailed,
			Error:     err.Error(),
			ElapsedMS: elapsed.Milliseconds(),
		})
		return err
	}

	status := output.StageCompleted
	if state := stage.Post(job); state != Complete {
		// The action ran but the postcondition is still unmet (e.g. the
		// engine produced a truncated log). Leave it for the next pass.
		status = output.StagePending
		d.log.Warn("Stage ran but postcondition unmet",
			zap.String("job", job.ID),
			zap.String("stage", string(stage.ID)),
			zap.String("post", state.String()))
	} else if err := job.MarkStage(string(stage.ID)); err != nil {
		return fmt.Errorf("mark stage: %w", err)
	}

	_ = d.events.WriteStage(&output.StageRecord{
		JobID:     job.ID,
		Stage:     string(stage.ID),
		Status:    status,
		ElapsedMS: elapsed.Milliseconds(),
	})
	return nil
}

func (d *Driver) jobComplete(job *jobstore.Job) bool {
	for _, stage := range d.wf.Stages() {
		if stage.Post(job) != Complete {
			return false
		}
	}
	return true
}

// RunAll drives every job, fanning out over the configured worker pool,
// and returns an aggregate summary. Individual job failures are recorded
// and do not stop other jobs.
func (d *Driver) RunAll(ctx context.Context, jobs []*jobstore.Job) Summary {
	start := time.Now()

	var (
		wg           sync.WaitGroup
		jobsComplete atomic.Int64
		stagesRun    atomic.Int64
		errs         atomic.Int64
	)

	work := make(chan *jobstore.Job)
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range work {
				res := d.RunJob(ctx, job)
				stagesRun.Add(int64(res.StagesRun))
				if res.Complete {
					jobsComplete.Add(1)
				}
				rec := &output.JobRecord{
					JobID:     res.JobID,
					StagesRun: res.StagesRun,
					Complete:  res.Complete,
				}
				if res.Err != nil {
					errs.Add(1)
					rec.Error = res.Err.Error()
					d.log.Error("Job pass failed",
						zap.String("job", res.JobID),
						zap.Error(res.Err))
				}
				_ = d.events.WriteJob(rec)
			}
		}()
	}

	for _, job := range jobs {
		work <- job
	}
	close(work)
	wg.Wait()

	sum := Summary{
		Jobs:         len(jobs),
		JobsComplete: int(jobsComplete.Load()),
		StagesRun:    int(stagesRun.Load()),
		Errors:       int(errs.Load()),
		Duration:     time.Since(start),
	}
	_ = d.events.WriteSummary(&output.SummaryRecord{
		Jobs:         sum.Jobs,
		JobsComplete: sum.JobsComplete,
		StagesRun:    sum.StagesRun,
		Errors:       sum.Errors,
		DurationMS:   sum.Duration.Milliseconds(),
	})
	return sum
}
