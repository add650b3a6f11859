package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/duckdesk/duckdesk/internal/fsindex"
)

var (
	ErrNotFound = errors.New("file not found")
	ErrNotUTF8  = errors.New("file is not valid UTF-8")
)

// ReadTextFile returns the whole file. There is no size limit.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", &fsindex.IOError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrNotUTF8, path)
	}
	return string(data), nil
}
