package fsindex

import (
	"reflect"
	"testing"
)

func TestBuildFromKeys(t *testing.T) {
	keys := []string{
		"data/sub/b.CSV",
		"data/a.sql",
		"data/readme.md",
		"data/empty/",
		"data/docs/notes.txt",
		"other/x.sql",
	}
	location := func(key string) string { return "s3://bucket/" + key }

	tree := BuildFromKeys("bucket", "data", keys, location)
	if tree.Path != "s3://bucket/data/" || tree.Name != "bucket" {
		t.Fatalf("root = %#v", tree)
	}
	want := []string{"query:a.sql", "directory:sub", "data:sub/b.CSV"}
	if got := shape(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
	if tree.Children[1].Path != "s3://bucket/data/sub/" {
		t.Fatalf("dir path = %q", tree.Children[1].Path)
	}
	if tree.Children[1].Children[0].Path != "s3://bucket/data/sub/b.CSV" {
		t.Fatalf("leaf path = %q", tree.Children[1].Children[0].Path)
	}
}

func TestBuildFromKeysWithoutPrefix(t *testing.T) {
	tree := BuildFromKeys("bucket", "", []string{"x/y/z.parquet", "top.xlsx"}, func(key string) string { return key })
	want := []string{"data:top.xlsx", "directory:x", "directory:x/y", "data:x/y/z.parquet"}
	if got := shape(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
}
