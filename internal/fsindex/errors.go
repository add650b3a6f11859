package fsindex

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("directory not found")
	ErrNotDirectory = errors.New("not a directory")
)

type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
