package storage

import (
	"fmt"
	"strings"
)

const Scheme = "s3://"

func IsRemote(location string) bool {
	return strings.HasPrefix(location, Scheme)
}

func FormatLocation(bucket, key string) string {
	return Scheme + bucket + "/" + strings.TrimPrefix(key, "/")
}

// ParseLocation splits "s3://bucket/key" into its bucket and key.
func ParseLocation(location string) (string, string, error) {
	if !IsRemote(location) {
		return "", "", fmt.Errorf("not an object store location: %q", location)
	}
	rest := strings.TrimPrefix(location, Scheme)
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("bucket is required: %q", location)
	}
	return bucket, key, nil
}
