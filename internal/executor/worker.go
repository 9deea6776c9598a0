package executor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/sink"
)

// worker is the processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, jobs <-chan job, results []Result, scratch []*sink.Sink, fail func(error), workerID int) {
	defer e.wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for j := range jobs {
		if ctx.Err() != nil {
			continue
		}
		workerLogger := logger.With("workerID", workerID, "call", j.call.Name)
		workerLogger.Debug("Worker picked up call.", "function", j.call.Site.Function().Name, "bindings", j.call.Site.Bindings())

		errs := sink.New()
		rows, err := j.call.Site.Eval(ctx, j.call.Inputs, j.call.Source, errs)
		if err != nil {
			workerLogger.Error("Call failed fatally.", "error", err)
			fail(fmt.Errorf("call '%s' at %s: %w", j.call.Name, j.call.Source, err))
			continue
		}

		results[j.index] = Result{Call: j.call, Rows: rows}
		scratch[j.index] = errs
		workerLogger.Debug("Call finished.", "rows", len(rows), "errors", errs.Len())
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
