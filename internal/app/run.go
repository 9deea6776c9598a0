package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/diagstore"
	"github.com/specialistvlad/primcall/internal/executor"
	"github.com/specialistvlad/primcall/internal/query"
	"github.com/specialistvlad/primcall/internal/sink"
	"github.com/specialistvlad/primcall/internal/value"
)

// ErrNothingToRun is returned by Run when neither a query path nor a
// function was configured.
var ErrNothingToRun = errors.New("no query path or function given")

// resultLine is one JSON line of output.
type resultLine struct {
	RunID    string          `json:"run_id"`
	Call     string          `json:"call"`
	Function string          `json:"function"`
	Target   string          `json:"target"`
	Source   string          `json:"source"`
	Rows     json.RawMessage `json:"rows"`
}

// Run compiles the configured query, evaluates it, writes one JSON line per
// call to the output and reports diagnostics. Type errors are not failures
// of the run; fatal defects are.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	if err := a.startHealthCheckServer(ctx); err != nil {
		return err
	}

	q, err := a.compile(ctx)
	if err != nil {
		return fmt.Errorf("failed to compile query: %w", err)
	}

	runID := uuid.NewString()
	a.logger.Info("🚀 Starting evaluation...", "run_id", runID, "calls", len(q.Calls), "workers", a.config.WorkerCount)
	report, err := executor.New(a.config.WorkerCount).Run(ctx, q)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	for _, res := range report.Results {
		if err := a.writeResult(runID, res); err != nil {
			return err
		}
	}
	if err := a.reportDiagnostics(ctx, runID, report.Errors); err != nil {
		return err
	}

	a.logger.Info("🏁 Evaluation finished.", "run_id", runID, "diagnostics", report.Errors.Len())
	return nil
}

func (a *App) compile(ctx context.Context) (*query.Query, error) {
	switch {
	case a.config.Function != "":
		return query.Inline(a.dispatcher, a.config.Function, a.config.Arguments)
	case a.config.QueryPath != "":
		return query.Load(ctx, a.config.QueryPath, a.dispatcher)
	default:
		return nil, ErrNothingToRun
	}
}

func (a *App) writeResult(runID string, res executor.Result) error {
	rows, err := value.RowsJSON(res.Rows)
	if err != nil {
		return fmt.Errorf("call '%s': %w", res.Call.Name, err)
	}
	line, err := json.Marshal(resultLine{
		RunID:    runID,
		Call:     res.Call.Name,
		Function: res.Call.Site.Function().Name,
		Target:   res.Call.Site.Descriptor().Address(),
		Source:   res.Call.Source,
		Rows:     rows,
	})
	if err != nil {
		return fmt.Errorf("call '%s': %w", res.Call.Name, err)
	}
	_, err = fmt.Fprintf(a.outW, "%s\n", line)
	return err
}

// reportDiagnostics prints every error row and, when configured, stores them.
func (a *App) reportDiagnostics(ctx context.Context, runID string, errs *sink.Sink) error {
	rows := errs.Rows()
	for _, row := range rows {
		fmt.Fprintf(a.errW, "%s: %s\n", sink.Source(row), sink.Message(row))
	}

	if a.config.DiagnosticsDB == "" {
		return nil
	}
	store, err := diagstore.Open(ctx, a.config.DiagnosticsDB)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, runID, rows); err != nil {
		return fmt.Errorf("failed to store diagnostics: %w", err)
	}
	a.logger.Info("Diagnostics stored.", "path", a.config.DiagnosticsDB, "run_id", runID, "rows", len(rows))
	return nil
}

// ListFunctions writes the function catalog as a table.
func (a *App) ListFunctions() error {
	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINPUTS\tOUTPUTS\tTARGET\tDESCRIPTION")
	for i, name := range a.registry.Names() {
		id, err := a.registry.Lookup(name)
		if err != nil {
			return err
		}
		desc := a.registry.Resolve(id)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i,
			desc.Name,
			strings.Join(desc.Inputs(), ","),
			strings.Join(desc.Outputs, ","),
			desc.Address(),
			desc.Description,
		)
	}
	return tw.Flush()
}
