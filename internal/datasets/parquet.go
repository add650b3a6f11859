package datasets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

type Column struct {
	Name         string `json:"name"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type,omitempty"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

type Schema struct {
	Path      string   `json:"path"`
	Rows      int64    `json:"rows"`
	RowGroups int      `json:"row_groups"`
	Columns   []Column `json:"columns"`
}

// InspectParquet reads only the footer of a local parquet file.
func InspectParquet(path string) (Schema, error) {
	if strings.ToLower(filepath.Ext(path)) != ".parquet" {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return Schema{}, err
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return Schema{}, err
	}
	return InspectParquetReader(file, stat.Size(), path)
}

func InspectParquetReader(reader io.ReaderAt, size int64, location string) (Schema, error) {
	pf, err := parquet.OpenFile(reader, size)
	if err != nil {
		return Schema{}, fmt.Errorf("open parquet %s: %w", location, err)
	}

	var columns []Column
	for _, field := range pf.Schema().Fields() {
		columns = append(columns, describeField(field, "", false)...)
	}
	return Schema{
		Path:      location,
		Rows:      pf.NumRows(),
		RowGroups: len(pf.RowGroups()),
		Columns:   columns,
	}, nil
}

// describeField flattens groups into dotted leaf names; repetition is
// inherited from any repeated ancestor.
func describeField(field parquet.Field, prefix string, parentRepeated bool) []Column {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		var out []Column
		for _, child := range children {
			out = append(out, describeField(child, name, repeated)...)
		}
		return out
	}

	column := Column{
		Name:         name,
		PhysicalType: physicalType(field),
		Optional:     field.Optional(),
		Repeated:     repeated,
	}
	if field.Type() != nil {
		if logical := field.Type().LogicalType(); logical != nil {
			column.LogicalType = logical.String()
		}
	}
	return []Column{column}
}

func physicalType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}
	switch field.Type().Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}
