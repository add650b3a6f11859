package fsindex

import (
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindDirectory Kind = "directory"
	KindQuery     Kind = "query"
	KindData      Kind = "data"
	KindIgnored   Kind = "ignored"
)

var extensionKinds = map[string]Kind{
	".sql":     KindQuery,
	".csv":     KindData,
	".xlsx":    KindData,
	".parquet": KindData,
}

// Classify looks only at the entry type and the extension, ignoring case.
func Classify(name string, isDir bool) Kind {
	if isDir {
		return KindDirectory
	}
	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(name))]; ok {
		return kind
	}
	return KindIgnored
}
