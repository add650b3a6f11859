package datasets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrUnsupported = errors.New("unsupported dataset")

var readers = map[string]string{
	".csv":     "read_csv_auto",
	".parquet": "read_parquet",
	".xlsx":    "read_xlsx",
}

// ReaderFunction names the DuckDB table function that scans path.
func ReaderFunction(path string) (string, error) {
	fn, ok := readers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return fn, nil
}

// PreviewSQL builds a SELECT over the dataset. A limit of zero or less
// selects every row.
func PreviewSQL(path string, limit int) (string, error) {
	fn, err := ReaderFunction(path)
	if err != nil {
		return "", err
	}
	sqlText := "SELECT * FROM " + fn + "(" + quoteLiteral(path) + ")"
	if limit > 0 {
		sqlText += " LIMIT " + strconv.Itoa(limit)
	}
	return sqlText, nil
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
