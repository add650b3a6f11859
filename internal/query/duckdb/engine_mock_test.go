package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/duckdesk/duckdesk/internal/query"
)

func newMockEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	engine := &Engine{
		Open:      func() (*sql.DB, error) { return db, nil },
		BatchSize: 2,
	}
	return engine, mock
}

func TestExecuteOpenFailureIsSessionError(t *testing.T) {
	engine := &Engine{Open: func() (*sql.DB, error) { return nil, errors.New("out of memory") }}
	_, err := engine.Execute(context.Background(), query.Request{SQL: "SELECT 1"})
	if !errors.Is(err, query.ErrSession) {
		t.Fatalf("Execute() error = %v, want ErrSession", err)
	}
}

func TestExecutePrepareFailureIsCompileError(t *testing.T) {
	engine, mock := newMockEngine(t)
	cause := errors.New(`Parser Error: syntax error at or near "SELEC"`)
	mock.ExpectPrepare("SELEC 1").WillReturnError(cause)
	mock.ExpectClose()

	_, err := engine.Execute(context.Background(), query.Request{SQL: "SELEC 1"})
	if !errors.Is(err, query.ErrCompile) {
		t.Fatalf("Execute() error = %v, want ErrCompile", err)
	}
	var typed *query.Error
	if !errors.As(err, &typed) || typed.Message() != cause.Error() {
		t.Fatalf("engine message lost: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet() error = %v", err)
	}
}

func TestExecuteQueryFailureIsExecutionError(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectPrepare("SELECT 1 / 0").ExpectQuery().WillReturnError(errors.New("Out of Range Error"))
	mock.ExpectClose()

	_, err := engine.Execute(context.Background(), query.Request{SQL: "SELECT 1 / 0"})
	if !errors.Is(err, query.ErrExecution) {
		t.Fatalf("Execute() error = %v, want ErrExecution", err)
	}
}

func TestExecuteMapsColumnTypesFromDriver(t *testing.T) {
	engine, mock := newMockEngine(t)
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("price").OfType("DECIMAL(10,2)", float64(0)),
		sqlmock.NewColumn("name").OfType("VARCHAR", ""),
	).AddRow(int64(1), 1.5, "a").AddRow(int64(2), 2.5, "b").AddRow(int64(3), 3.5, "c")
	mock.ExpectPrepare("SELECT id, price, name FROM items").ExpectQuery().WillReturnRows(rows)
	mock.ExpectClose()

	result, err := engine.Execute(context.Background(), query.Request{SQL: "SELECT id, price, name FROM items"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := []query.LogicalType{query.TypeInt, query.TypeFloat, query.TypeText}
	for i, column := range result.Columns {
		if column.Type != want[i] {
			t.Fatalf("column %q type = %q, want %q", column.Name, column.Type, want[i])
		}
	}
	if result.Columns[1].DatabaseType != "DECIMAL(10,2)" {
		t.Fatalf("DatabaseType = %q", result.Columns[1].DatabaseType)
	}
	if len(result.Batches) != 2 || result.RowCount() != 3 {
		t.Fatalf("batches = %d rows = %d", len(result.Batches), result.RowCount())
	}
	if result.Batches[1].Rows[0][2] != "c" {
		t.Fatalf("last row = %#v", result.Batches[1].Rows[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet() error = %v", err)
	}
}

func TestExecuteWithoutColumnsProducesNoBatches(t *testing.T) {
	engine, mock := newMockEngine(t)
	mock.ExpectPrepare("INSTALL httpfs").ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectClose()

	result, err := engine.Execute(context.Background(), query.Request{SQL: "INSTALL httpfs"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Batches) != 0 {
		t.Fatalf("batches = %d, want 0", len(result.Batches))
	}
}
