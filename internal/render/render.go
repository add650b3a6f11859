package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/duckdesk/duckdesk/internal/observability"
	"github.com/duckdesk/duckdesk/internal/query"
)

type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

type Renderer struct {
	Engine      query.Engine
	NullDisplay string
	Logger      *slog.Logger
}

func New(engine query.Engine, nullDisplay string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Renderer{Engine: engine, NullDisplay: nullDisplay, Logger: logger}
}

// Render executes sqlText in a fresh engine session and converts every
// returned row into text. It returns either a complete table or an error.
func (r *Renderer) Render(ctx context.Context, sqlText string) (Table, error) {
	start := time.Now()
	logger := r.Logger
	if logger == nil {
		logger = observability.Discard()
	}

	table, err := r.render(ctx, sqlText)
	elapsed := time.Since(start)
	outcome := Outcome(err)
	observability.ObserveRender(outcome, len(table.Rows), elapsed)

	if err != nil {
		logger.WarnContext(ctx, "query render failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
		)
		return Table{}, err
	}
	logger.DebugContext(ctx, "query rendered",
		slog.String("trace_id", observability.TraceIDFromContext(ctx)),
		slog.Int("columns", len(table.Header)),
		slog.Int("rows", len(table.Rows)),
		slog.String("duration", elapsed.String()),
	)
	return table, nil
}

func (r *Renderer) render(ctx context.Context, sqlText string) (Table, error) {
	if r.Engine == nil {
		return Table{}, query.NewError(query.ErrSession, errors.New("no query engine configured"))
	}
	result, err := r.Engine.Execute(ctx, query.Request{SQL: sqlText})
	if err != nil {
		return Table{}, err
	}
	return Build(result, r.NullDisplay)
}

// Build turns a materialized result into a table. A result without batches
// has no schema and yields ErrNoResults.
func Build(result query.Result, nullDisplay string) (Table, error) {
	if len(result.Batches) == 0 {
		return Table{}, query.NewError(query.ErrNoResults, nil)
	}

	header := make([]string, len(result.Columns))
	for i, column := range result.Columns {
		header[i] = column.Name
	}

	rows := make([][]string, 0, result.RowCount())
	for _, batch := range result.Batches {
		for _, values := range batch.Rows {
			if len(values) != len(result.Columns) {
				return Table{}, query.NewError(query.ErrFormat,
					fmt.Errorf("row %d has %d values for %d columns", len(rows), len(values), len(result.Columns)))
			}
			cells := make([]string, len(values))
			for i, value := range values {
				text, err := formatCell(result.Columns[i], value, nullDisplay)
				if err != nil {
					return Table{}, err
				}
				cells[i] = text
			}
			rows = append(rows, cells)
		}
	}
	return Table{Header: header, Rows: rows}, nil
}

// Outcome names the error kind for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, query.ErrSession):
		return "session_error"
	case errors.Is(err, query.ErrCompile):
		return "compile_error"
	case errors.Is(err, query.ErrExecution):
		return "execution_error"
	case errors.Is(err, query.ErrNoResults):
		return "no_results"
	case errors.Is(err, query.ErrFormat):
		return "format_error"
	default:
		return "error"
	}
}
