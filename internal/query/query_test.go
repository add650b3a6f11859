package query

import (
	"errors"
	"fmt"
	"testing"
)

func TestLogicalTypeOf(t *testing.T) {
	cases := map[string]LogicalType{
		"INTEGER":                  TypeInt,
		"bigint":                   TypeInt,
		"HUGEINT":                  TypeInt,
		"UBIGINT":                  TypeInt,
		"DOUBLE":                   TypeFloat,
		"FLOAT":                    TypeFloat,
		"DECIMAL(18,3)":            TypeFloat,
		"VARCHAR":                  TypeText,
		"ENUM('a', 'b')":           TypeText,
		"BOOLEAN":                  TypeBool,
		"DATE":                     TypeDate,
		"TIMESTAMP":                TypeTimestamp,
		"TIMESTAMP_NS":             TypeTimestamp,
		"TIMESTAMPTZ":              TypeTimestamp,
		"TIMESTAMP WITH TIME ZONE": TypeTimestamp,
		"NULL":                     TypeNull,
		"INTEGER[]":                TypeOther,
		"DECIMAL(18,3)[]":          TypeOther,
		"STRUCT(a INTEGER)":        TypeOther,
		"BLOB":                     TypeOther,
		"UUID":                     TypeOther,
		"TIME":                     TypeOther,
		"INTERVAL":                 TypeOther,
		"":                         TypeOther,
	}
	for name, want := range cases {
		if got := LogicalTypeOf(name); got != want {
			t.Fatalf("LogicalTypeOf(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestResultRowCount(t *testing.T) {
	result := Result{Batches: []Batch{
		{Rows: [][]any{{1}, {2}}},
		{Rows: [][]any{{3}}},
		{},
	}}
	if got := result.RowCount(); got != 3 {
		t.Fatalf("RowCount() = %d, want 3", got)
	}
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("Parser Error: syntax error at or near \"SELEC\"")
	err := fmt.Errorf("render: %w", NewError(ErrCompile, cause))

	if !errors.Is(err, ErrCompile) {
		t.Fatal("expected errors.Is(err, ErrCompile)")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is(err, cause)")
	}
	if errors.Is(err, ErrExecution) {
		t.Fatal("compile error must not match ErrExecution")
	}
	if KindOf(err) != ErrCompile {
		t.Fatalf("KindOf() = %v", KindOf(err))
	}

	var typed *Error
	if !errors.As(err, &typed) {
		t.Fatal("expected *Error")
	}
	if typed.Message() != cause.Error() {
		t.Fatalf("Message() = %q", typed.Message())
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewError(ErrNoResults, nil)
	if err.Error() != ErrNoResults.Error() {
		t.Fatalf("Error() = %q", err.Error())
	}
	if err.Message() != ErrNoResults.Error() {
		t.Fatalf("Message() = %q", err.Message())
	}
	if KindOf(errors.New("other")) != nil {
		t.Fatal("KindOf() should be nil for foreign errors")
	}
}
