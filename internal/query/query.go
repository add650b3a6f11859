package query

import (
	"context"
	"strings"
	"time"
)

// LogicalType is the display-relevant category of a result column.
type LogicalType string

const (
	TypeInt       LogicalType = "int"
	TypeFloat     LogicalType = "float"
	TypeText      LogicalType = "text"
	TypeBool      LogicalType = "bool"
	TypeDate      LogicalType = "date"
	TypeTimestamp LogicalType = "timestamp"
	TypeNull      LogicalType = "null"
	TypeOther     LogicalType = "other"
)

type Column struct {
	Name         string
	Type         LogicalType
	DatabaseType string
}

type Batch struct {
	Rows [][]any
}

type Request struct {
	SQL string
}

// Result holds every batch of one execution. A statement without a result
// schema produces no batches at all; a query that matches nothing produces a
// single empty batch.
type Result struct {
	Columns  []Column
	Batches  []Batch
	Duration time.Duration
}

func (r Result) RowCount() int {
	total := 0
	for _, batch := range r.Batches {
		total += len(batch.Rows)
	}
	return total
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

// LogicalTypeOf maps an engine type name such as "INTEGER", "DECIMAL(18,3)"
// or "TIMESTAMP WITH TIME ZONE" to its logical type.
func LogicalTypeOf(databaseType string) LogicalType {
	name := strings.ToUpper(strings.TrimSpace(databaseType))
	if strings.HasSuffix(name, "]") {
		return TypeOther
	}
	if idx := strings.IndexByte(name, '('); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}

	switch name {
	case "TINYINT", "SMALLINT", "INTEGER", "INT", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "UHUGEINT",
		"INT1", "INT2", "INT4", "INT8", "INT16", "INT32", "INT64":
		return TypeInt
	case "FLOAT", "REAL", "DOUBLE", "FLOAT4", "FLOAT8", "DECIMAL", "NUMERIC":
		return TypeFloat
	case "VARCHAR", "TEXT", "STRING", "CHAR", "BPCHAR", "ENUM":
		return TypeText
	case "BOOLEAN", "BOOL":
		return TypeBool
	case "DATE":
		return TypeDate
	case "TIMESTAMP", "DATETIME", "TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS",
		"TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE":
		return TypeTimestamp
	case "NULL", "SQLNULL":
		return TypeNull
	default:
		return TypeOther
	}
}
