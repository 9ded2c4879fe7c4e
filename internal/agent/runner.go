package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/store"
)

// Runner owns the lifecycle of analysis runs: it creates the Run record,
// transitions it to running, and executes the pipeline as a tracked
// background task with a timeout. Task failures are recorded on the Run
// and never surfaced to the caller that started it.
type Runner struct {
	store    store.Store
	pipeline *Pipeline
	timeout  time.Duration

	wg sync.WaitGroup
}

func NewRunner(st store.Store, pipeline *Pipeline, timeout time.Duration) *Runner {
	return &Runner{store: st, pipeline: pipeline, timeout: timeout}
}

// Start creates a Run for the company, marks it running, and launches the
// pipeline in the background. It returns as soon as the Run record is in
// the running state; callers observe completion by polling the Run.
//
// Two concurrent Starts for the same company create two independent Runs.
func (r *Runner) Start(ctx context.Context, companyID int64) (*model.Run, error) {
	company, err := r.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	run, err := r.store.CreateRun(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := r.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		return nil, err
	}
	run.Status = model.RunStatusRunning

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// The background task outlives the request that started it.
		taskCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.execute(taskCtx, company, run.ID)
	}()

	return run, nil
}

// RunSync executes a run to completion in the caller's context. Used by
// the CLI, which has nothing to return to early.
func (r *Runner) RunSync(ctx context.Context, companyID int64) (*model.Run, error) {
	company, err := r.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	run, err := r.store.CreateRun(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := r.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		return nil, err
	}
	r.execute(ctx, company, run.ID)
	return r.store.GetRun(ctx, run.ID)
}

// execute runs the pipeline and records the outcome on the Run. All
// failures are swallowed here; the Run's status is the only signal.
func (r *Runner) execute(ctx context.Context, company *model.Company, runID int64) {
	docs, err := r.store.ListCompanyDocuments(ctx, company.ID)
	if err != nil {
		r.fail(runID, err)
		return
	}

	in := Input{
		CompanyID:   company.ID,
		RunID:       runID,
		CompanyName: company.Name,
		Documents:   BuildDocumentContext(docs),
	}

	res, err := r.pipeline.Run(ctx, in)
	if err != nil {
		r.fail(runID, err)
		return
	}

	if err := SaveResults(ctx, r.store, in, res); err != nil {
		r.fail(runID, err)
		return
	}

	usage := store.RunUsage{
		Model:    res.Model,
		TokenIn:  res.Usage.InputTokens,
		TokenOut: res.Usage.OutputTokens,
		Cost:     res.Usage.EstimateCost(res.Model),
	}
	if err := r.store.CompleteRun(ctx, runID, usage); err != nil {
		zap.L().Error("complete run", zap.Int64("run_id", runID), zap.Error(err))
	}
}

func (r *Runner) fail(runID int64, cause error) {
	zap.L().Warn("analysis run failed", zap.Int64("run_id", runID), zap.Error(cause))
	// Use a fresh context: the task context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.store.FailRun(ctx, runID, cause.Error()); err != nil {
		zap.L().Error("record run failure", zap.Int64("run_id", runID), zap.Error(err))
	}
}

// RecoverInterrupted marks runs left running by a previous process as
// failed. Called once at startup.
func (r *Runner) RecoverInterrupted(ctx context.Context) (int, error) {
	return r.store.FailInterruptedRuns(ctx)
}

// Shutdown waits for in-flight background runs to finish or for ctx to
// expire, whichever comes first.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
