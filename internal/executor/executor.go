// Package executor evaluates a compiled query on a pool of workers.
package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/query"
	"github.com/specialistvlad/primcall/internal/sink"
	"github.com/specialistvlad/primcall/internal/value"
)

// Result holds the rows one call produced. Rows is empty when the call
// recorded a type error instead.
type Result struct {
	Call *query.Call
	Rows []value.Row
}

// Report is the outcome of a run. Results and Errors are both in call order,
// whatever order the workers finished in.
type Report struct {
	Results []Result
	Errors  *sink.Sink
}

// Executor runs calls concurrently. Engine access is serialized by the
// engine host, so workers only overlap on argument handling.
type Executor struct {
	workers int
	wg      sync.WaitGroup
}

// New creates an executor with the given number of workers. Values below 1
// mean one worker.
func New(workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{workers: workers}
}

// job is one call plus the slot its output goes to.
type job struct {
	index int
	call  *query.Call
}

// Run evaluates every call of q. Each call writes into its own scratch sink;
// the scratch sinks are merged in call order once all workers are done. A
// fatal binding defect cancels the remaining calls and is returned.
func (e *Executor) Run(ctx context.Context, q *query.Query) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := len(q.Calls)
	results := make([]Result, n)
	scratch := make([]*sink.Sink, n)
	jobs := make(chan job)

	var (
		errOnce  sync.Once
		fatalErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			fatalErr = err
			cancel()
		})
	}

	workers := min(e.workers, max(n, 1))
	logger.Debug("Starting workers.", "workers", workers, "calls", n)
	for id := 0; id < workers; id++ {
		e.wg.Add(1)
		go e.worker(ctx, jobs, results, scratch, fail, id)
	}

feed:
	for i, call := range q.Calls {
		select {
		case jobs <- job{index: i, call: call}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	e.wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	errs := sink.New()
	errs.Merge(scratch...)
	return &Report{Results: results, Errors: errs}, nil
}
