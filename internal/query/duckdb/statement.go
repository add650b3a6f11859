package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"unicode"

	goduckdb "github.com/marcboeker/go-duckdb/v2"

	"github.com/duckdesk/duckdesk/internal/query"
)

type rowShape int

const (
	shapeRows rowShape = iota
	shapeNone
)

// executeNative prepares the script exactly once. The driver runs every
// statement before the last one while preparing, so the prepared statement is
// also the one that gets queried.
func (e *Engine) executeNative(ctx context.Context, conn *goduckdb.Conn, sqlText string) (query.Result, error) {
	prepared, err := conn.PrepareContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, query.NewError(query.ErrCompile, err)
	}
	defer func() { _ = prepared.Close() }()

	stmt, ok := prepared.(*goduckdb.Stmt)
	if !ok {
		return query.Result{}, query.NewError(query.ErrCompile, fmt.Errorf("unexpected statement %T", prepared))
	}
	stmtType, err := stmt.StatementType()
	if err != nil {
		return query.Result{}, query.NewError(query.ErrCompile, err)
	}

	rows, err := stmt.QueryContext(ctx, nil)
	if err != nil {
		return query.Result{}, query.NewError(query.ErrExecution, err)
	}
	defer func() { _ = rows.Close() }()

	columns := driverColumns(rows)
	if shapeOf(stmtType) == shapeNone || len(columns) == 0 {
		if err := drain(rows, len(columns)); err != nil {
			return query.Result{}, query.NewError(query.ErrExecution, err)
		}
		return query.Result{}, nil
	}

	var source driver.Rows = rows
	if stmtType == goduckdb.STATEMENT_TYPE_SELECT {
		if recast, recastColumns := recastUndecodable(ctx, conn, sqlText, columns); recast != nil {
			defer func() { _ = recast.Close() }()
			source, columns = recast, recastColumns
		}
	}

	batches, err := collectBatches(newDriverRows(source, len(columns)), len(columns), e.batchSize())
	if err != nil {
		return query.Result{}, query.NewError(query.ErrExecution, err)
	}
	return query.Result{Columns: columns, Batches: batches}, nil
}

func driverColumns(rows driver.Rows) []query.Column {
	names := rows.Columns()
	typed, _ := rows.(driver.RowsColumnTypeDatabaseTypeName)
	columns := make([]query.Column, 0, len(names))
	for i, name := range names {
		databaseType := ""
		if typed != nil {
			databaseType = typed.ColumnTypeDatabaseTypeName(i)
		}
		columns = append(columns, newColumn(name, databaseType))
	}
	return columns
}

func drain(rows driver.Rows, width int) error {
	source := newDriverRows(rows, width)
	values := make([]any, width)
	for {
		ok, err := source.next(values)
		if err != nil || !ok {
			return err
		}
	}
}

// undecodableTypes are result types the driver refuses to read.
var undecodableTypes = map[string]bool{
	"UHUGEINT": true,
	"BIT":      true,
	"BIGNUM":   true,
	"VARINT":   true,
}

func undecodable(databaseType string) bool {
	tokens := strings.FieldsFunc(strings.ToUpper(databaseType), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	return slices.ContainsFunc(tokens, func(token string) bool { return undecodableTypes[token] })
}

// recastUndecodable re-reads a single SELECT with its undecodable columns cast
// to VARCHAR. Anything DuckDB will not accept as a subquery, including a
// multi-statement script, fails to parse before executing and leaves the
// original result in place.
func recastUndecodable(ctx context.Context, conn *goduckdb.Conn, sqlText string, columns []query.Column) (driver.Rows, []query.Column) {
	recast := slices.Clone(columns)
	var replacements []string
	for i, column := range columns {
		if !undecodable(column.DatabaseType) {
			continue
		}
		name := quoteIdentifier(column.Name)
		replacements = append(replacements, fmt.Sprintf("CAST(%s AS VARCHAR) AS %s", name, name))
		recast[i].Type = query.TypeOther
	}
	if len(replacements) == 0 {
		return nil, nil
	}

	body := strings.TrimRightFunc(sqlText, func(r rune) bool { return r == ';' || unicode.IsSpace(r) })
	wrapped := "SELECT * REPLACE (" + strings.Join(replacements, ", ") + ") FROM (\n" + body + "\n)"
	rows, err := conn.QueryContext(ctx, wrapped, nil)
	if err != nil {
		return nil, nil
	}
	if len(rows.Columns()) != len(columns) {
		_ = rows.Close()
		return nil, nil
	}
	return rows, recast
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func shapeOf(stmtType goduckdb.StmtType) rowShape {
	switch stmtType {
	case goduckdb.STATEMENT_TYPE_CREATE,
		goduckdb.STATEMENT_TYPE_ALTER,
		goduckdb.STATEMENT_TYPE_DROP,
		goduckdb.STATEMENT_TYPE_TRANSACTION,
		goduckdb.STATEMENT_TYPE_SET,
		goduckdb.STATEMENT_TYPE_LOAD,
		goduckdb.STATEMENT_TYPE_ATTACH,
		goduckdb.STATEMENT_TYPE_DETACH,
		goduckdb.STATEMENT_TYPE_PREPARE,
		goduckdb.STATEMENT_TYPE_VACUUM:
		return shapeNone
	default:
		return shapeRows
	}
}
