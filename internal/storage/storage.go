package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Object is an open remote object. ReadAt lets footer-indexed formats such as
// parquet fetch only the byte ranges they need.
type Object interface {
	io.ReadCloser
	io.ReaderAt
}

// ObjectStore is a read-only view over remote datasets. Keys are relative to
// the store's configured prefix.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Get(ctx context.Context, key string) (Object, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Location(key string) string
	KeyOf(location string) (string, error)
}
