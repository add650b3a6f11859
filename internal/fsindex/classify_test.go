package fsindex

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		isDir bool
		want  Kind
	}{
		{"report.sql", false, KindQuery},
		{"REPORT.SQL", false, KindQuery},
		{"data.csv", false, KindData},
		{"data.CSV", false, KindData},
		{"book.xlsx", false, KindData},
		{"events.Parquet", false, KindData},
		{"notes.txt", false, KindIgnored},
		{"Makefile", false, KindIgnored},
		{"archive.csv.gz", false, KindIgnored},
		{"folder.sql", true, KindDirectory},
		{"plain", true, KindDirectory},
	}
	for _, tc := range cases {
		if got := Classify(tc.name, tc.isDir); got != tc.want {
			t.Fatalf("Classify(%q, %v) = %q, want %q", tc.name, tc.isDir, got, tc.want)
		}
	}
}
