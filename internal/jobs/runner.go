package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/histpath/readingorder"
	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/layout"
	"github.com/histpath/readingorder/model"
)

// DefaultWorkers bounds concurrent processing when RunnerConfig.Workers is
// not positive.
const DefaultWorkers = 4

// Task is one document to order.
type Task struct {
	// Source names the document in job records and logs.
	Source string

	// Data is the raw detection file.
	Data []byte

	// Format forces the input format. Unknown sniffs Data.
	Format format.Format
}

// Outcome is what processing a task produced.
type Outcome struct {
	Results  []model.Result
	Warnings []string
}

// ProcessFunc orders one task.
type ProcessFunc func(ctx context.Context, task Task) (Outcome, error)

// OrderProcessor returns a ProcessFunc that runs the reading order pipeline
// with the given strategy.
func OrderProcessor(strategy layout.StrategyConfig, normalizeText bool, logger zerolog.Logger) ProcessFunc {
	return func(ctx context.Context, task Task) (Outcome, error) {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		ord := readingorder.FromBytes(task.Data, task.Format).
			WithStrategyConfig(strategy).
			WithLogger(logger.With().Str("source", task.Source).Logger())
		if normalizeText {
			ord = ord.NormalizeText()
		}

		results, warnings, err := ord.Results()
		if err != nil {
			return Outcome{}, err
		}

		out := Outcome{Results: results}
		for _, w := range warnings {
			out.Warnings = append(out.Warnings, w.String())
		}
		return out, nil
	}
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Workers int
	Logger  zerolog.Logger
}

// Runner moves jobs through queued, processing and a terminal state while
// running at most Workers tasks at once.
type Runner struct {
	store   Store
	process ProcessFunc
	workers int
	logger  zerolog.Logger

	async   *errgroup.Group
	pending sync.WaitGroup
}

// NewRunner creates a runner that records jobs in store.
func NewRunner(store Store, process ProcessFunc, config RunnerConfig) *Runner {
	workers := config.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	async := &errgroup.Group{}
	async.SetLimit(workers)

	return &Runner{
		store:   store,
		process: process,
		workers: workers,
		logger:  config.Logger,
		async:   async,
	}
}

// Workers returns the concurrency limit.
func (r *Runner) Workers() int {
	return r.workers
}

// Run processes tasks and blocks until every job is terminal. Task failures
// are recorded on their jobs and do not stop the batch. Jobs not yet started
// when ctx is cancelled are marked failed. Only store errors are returned.
// Jobs are returned in task order.
func (r *Runner) Run(ctx context.Context, tasks []Task) ([]Job, error) {
	jobs := make([]Job, len(tasks))
	for i, task := range tasks {
		job, err := r.store.Create(ctx, task.Source)
		if err != nil {
			return nil, fmt.Errorf("creating job for %s: %w", task.Source, err)
		}
		jobs[i] = job
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range tasks {
		g.Go(func() error {
			job, err := r.execute(gctx, jobs[i], tasks[i], r.process)
			jobs[i] = job
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return jobs, err
	}
	return jobs, nil
}

// Submit queues a task and returns its job immediately. The task runs in the
// background once a worker is free.
func (r *Runner) Submit(ctx context.Context, task Task) (Job, error) {
	return r.SubmitWith(ctx, task, r.process)
}

// SubmitWith is like Submit but processes the task with process instead of
// the runner's default.
func (r *Runner) SubmitWith(ctx context.Context, task Task, process ProcessFunc) (Job, error) {
	job, err := r.store.Create(ctx, task.Source)
	if err != nil {
		return Job{}, fmt.Errorf("creating job for %s: %w", task.Source, err)
	}

	r.logger.Debug().Str("job_id", job.ID).Str("source", task.Source).Msg("Job queued")

	r.pending.Add(1)
	go r.async.Go(func() error {
		defer r.pending.Done()
		if _, err := r.execute(context.Background(), job, task, process); err != nil {
			r.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to record job state")
		}
		return nil
	})

	return job, nil
}

// Wait blocks until every submitted task has finished.
func (r *Runner) Wait() {
	r.pending.Wait()
}

// execute runs one job to a terminal state. The returned error is non-nil
// only when the store could not be updated. Terminal states are written even
// after ctx is cancelled so no job is left processing.
func (r *Runner) execute(ctx context.Context, job Job, task Task, process ProcessFunc) (Job, error) {
	log := r.logger.With().Str("job_id", job.ID).Str("source", task.Source).Logger()
	final := context.WithoutCancel(ctx)

	if err := ctx.Err(); err != nil {
		job.Error = err.Error()
		return r.transition(final, job, StateFailed)
	}

	started, err := r.transition(ctx, job, StateProcessing)
	if err != nil {
		if ctx.Err() == nil {
			return job, err
		}
		job.Error = ctx.Err().Error()
		return r.transition(final, job, StateFailed)
	}
	job = started

	outcome, err := process(ctx, task)
	if err != nil {
		job.Error = err.Error()
		log.Warn().Err(err).Msg("Job failed")
		return r.transition(final, job, StateFailed)
	}

	job.Results = outcome.Results
	job.Warnings = outcome.Warnings
	log.Info().
		Int("pages", len(outcome.Results)).
		Int("warnings", len(outcome.Warnings)).
		Msg("Job completed")
	return r.transition(final, job, StateCompleted)
}

// transition moves job to next and stores it. On a store error the
// returned job keeps its previous state.
func (r *Runner) transition(ctx context.Context, job Job, next State) (Job, error) {
	if !job.State.CanTransition(next) {
		return job, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, job.State, next)
	}
	updated := job
	updated.State = next
	if err := r.store.Update(ctx, updated); err != nil {
		return job, fmt.Errorf("updating job %s to %s: %w", job.ID, next, err)
	}
	return updated, nil
}
