package duckdb

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb/v2"

	"github.com/duckdesk/duckdesk/internal/query"
)

// DefaultBatchSize matches DuckDB's standard vector size.
const DefaultBatchSize = 2048

type OpenFunc func() (*sql.DB, error)

// Engine runs every request in its own in-memory database. Nothing created by
// one request is visible to the next.
type Engine struct {
	Open      OpenFunc
	BatchSize int
}

func NewEngine(batchSize int) *Engine {
	return &Engine{Open: OpenInMemory, BatchSize: batchSize}
}

func OpenInMemory() (*sql.DB, error) {
	return sql.Open("duckdb", "")
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	if strings.TrimSpace(request.SQL) == "" {
		return query.Result{}, query.NewError(query.ErrCompile, errors.New("sql is required"))
	}

	start := time.Now()
	open := e.Open
	if open == nil {
		open = OpenInMemory
	}
	db, err := open()
	if err != nil {
		return query.Result{}, query.NewError(query.ErrSession, fmt.Errorf("open duckdb: %w", err))
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return query.Result{}, query.NewError(query.ErrSession, fmt.Errorf("ping duckdb: %w", err))
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return query.Result{}, query.NewError(query.ErrSession, fmt.Errorf("acquire connection: %w", err))
	}
	defer func() { _ = conn.Close() }()

	var (
		result query.Result
		native bool
	)
	err = conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(*goduckdb.Conn)
		if !ok {
			return nil
		}
		native = true
		var runErr error
		result, runErr = e.executeNative(ctx, dc, request.SQL)
		return runErr
	})
	if err == nil && !native {
		result, err = e.executeGeneric(ctx, conn, request.SQL)
	}
	if err != nil {
		var typed *query.Error
		if !errors.As(err, &typed) {
			return query.Result{}, query.NewError(query.ErrSession, err)
		}
		return query.Result{}, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// executeGeneric serves drivers other than DuckDB's. Without a statement type
// a result with no columns is treated as a statement without a result schema.
func (e *Engine) executeGeneric(ctx context.Context, conn *sql.Conn, sqlText string) (query.Result, error) {
	stmt, err := conn.PrepareContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, query.NewError(query.ErrCompile, err)
	}
	defer func() { _ = stmt.Close() }()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return query.Result{}, query.NewError(query.ErrExecution, err)
	}
	defer func() { _ = rows.Close() }()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return query.Result{}, query.NewError(query.ErrExecution, fmt.Errorf("query columns: %w", err))
	}
	if len(columnTypes) == 0 {
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			return query.Result{}, query.NewError(query.ErrExecution, err)
		}
		return query.Result{}, nil
	}

	columns := make([]query.Column, 0, len(columnTypes))
	for _, columnType := range columnTypes {
		columns = append(columns, newColumn(columnType.Name(), columnType.DatabaseTypeName()))
	}

	batches, err := collectBatches(sqlRows{rows: rows}, len(columns), e.batchSize())
	if err != nil {
		return query.Result{}, query.NewError(query.ErrExecution, err)
	}
	return query.Result{Columns: columns, Batches: batches}, nil
}

func newColumn(name, databaseType string) query.Column {
	return query.Column{
		Name:         name,
		Type:         query.LogicalTypeOf(databaseType),
		DatabaseType: databaseType,
	}
}

func (e *Engine) batchSize() int {
	if e.BatchSize > 0 {
		return e.BatchSize
	}
	return DefaultBatchSize
}

// rowSource yields one row per call and reports false once drained.
type rowSource interface {
	next(dest []any) (bool, error)
}

type sqlRows struct {
	rows *sql.Rows
}

func (s sqlRows) next(dest []any) (bool, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return false, fmt.Errorf("iterate rows: %w", err)
		}
		return false, nil
	}
	targets := make([]any, len(dest))
	for i := range dest {
		targets[i] = &dest[i]
	}
	if err := s.rows.Scan(targets...); err != nil {
		return false, fmt.Errorf("scan row: %w", err)
	}
	return true, nil
}

type driverRows struct {
	rows   driver.Rows
	values []driver.Value
}

func newDriverRows(rows driver.Rows, width int) *driverRows {
	return &driverRows{rows: rows, values: make([]driver.Value, width)}
}

func (d *driverRows) next(dest []any) (bool, error) {
	if err := d.rows.Next(d.values); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("iterate rows: %w", err)
	}
	for i, value := range d.values {
		if raw, ok := value.([]byte); ok {
			value = bytes.Clone(raw)
		}
		dest[i] = value
	}
	return true, nil
}

// collectBatches always returns at least one batch, so an empty result keeps
// its schema.
func collectBatches(source rowSource, width, batchSize int) ([]query.Batch, error) {
	batches := []query.Batch{{Rows: make([][]any, 0)}}
	for {
		values := make([]any, width)
		ok, err := source.next(values)
		if err != nil {
			return nil, err
		}
		if !ok {
			return batches, nil
		}

		current := &batches[len(batches)-1]
		if len(current.Rows) >= batchSize {
			batches = append(batches, query.Batch{Rows: make([][]any, 0, batchSize)})
			current = &batches[len(batches)-1]
		}
		current.Rows = append(current.Rows, values)
	}
}
