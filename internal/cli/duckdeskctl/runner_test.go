package duckdeskctl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	APIKey string
	Body   string
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	got := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			APIKey: r.Header.Get("X-API-Key"),
			Body:   string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		Timeout: 2 * time.Second,
	})
	return code, stdout.String(), stderr.String()
}

func TestRunHealthCommand(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"status":"ok"}`)

	code, stdout, stderr := run(t, "--base-url", srv.URL, "--api-key", "k1", "health")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/v1/health", got.Path)
	assert.Equal(t, "k1", got.APIKey)
	assert.Contains(t, stdout, `"status": "ok"`)
}

func TestRunQueryCommandRendersTable(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"header":["id","name"],"rows":[["1","duck"]],"stats":{"rows":1}}`)

	code, stdout, stderr := run(t, "--base-url", srv.URL, "query", "SELECT 1 AS id, 'duck' AS name")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/v1/query", got.Path)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(got.Body), &body))
	assert.Equal(t, "SELECT 1 AS id, 'duck' AS name", body["sql"])

	assert.Contains(t, stdout, "id")
	assert.Contains(t, stdout, "duck")
	assert.Contains(t, stdout, "┌")
}

func TestRunQueryCommandOutputs(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"header":["x"],"rows":[["1"]]}`)

	code, stdout, _ := run(t, "--base-url", srv.URL, "-o", "csv", "query", "SELECT 1 AS x")
	require.Equal(t, 0, code)
	assert.Equal(t, "x\n1\n", stdout)

	code, stdout, _ = run(t, "--base-url", srv.URL, "-o", "markdown", "query", "SELECT 1 AS x")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "| x |")

	code, stdout, _ = run(t, "--base-url", srv.URL, "-o", "json", "query", "SELECT 1 AS x")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, `"header": [`)
}

func TestRunQueryCommandReadsFile(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"header":["x"],"rows":[]}`)
	path := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 2 AS x"), 0o644))

	code, _, stderr := run(t, "--base-url", srv.URL, "query", "--file", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, got.Body, "SELECT 2 AS x")
}

func TestRunQueryCommandReportsAPIError(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest, `{"error_code":"COMPILE_FAILED","message":"Parser Error: syntax error","retryable":false}`)

	code, _, stderr := run(t, "--base-url", srv.URL, "query", "SELEC 1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "http 400 COMPILE_FAILED: Parser Error: syntax error")
}

func TestRunFilesCommandPrintsTree(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"files":2,"root":{"kind":"directory","name":"ws","path":"/ws","children":[
		{"kind":"directory","name":"queries","path":"/ws/queries","children":[{"kind":"query","name":"daily.sql","path":"/ws/queries/daily.sql"}]},
		{"kind":"data","name":"events.parquet","path":"/ws/events.parquet"}]}}`)

	code, stdout, stderr := run(t, "--base-url", srv.URL, "files", "/ws")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "/v1/files", got.Path)
	assert.Equal(t, "root=%2Fws", got.Query)
	assert.Contains(t, stdout, "ws/")
	assert.Contains(t, stdout, "queries/")
	assert.Contains(t, stdout, "daily.sql")
	assert.Contains(t, stdout, "events.parquet")
}

func TestRunCatCommand(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, "SELECT 1")

	code, stdout, _ := run(t, "--base-url", srv.URL, "cat", "/ws/a.sql")
	require.Equal(t, 0, code)
	assert.Equal(t, "/v1/files/content", got.Path)
	assert.Equal(t, "SELECT 1", stdout)
}

func TestRunPreviewCommand(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"path":"/d/e.csv","sql":"SELECT * FROM read_csv_auto('/d/e.csv') LIMIT 5"}`)

	code, stdout, _ := run(t, "--base-url", srv.URL, "preview", "--limit", "5", "/d/e.csv")
	require.Equal(t, 0, code)
	assert.Equal(t, "/v1/datasets/preview", got.Path)
	assert.Equal(t, "limit=5&path=%2Fd%2Fe.csv", got.Query)
	assert.Equal(t, "SELECT * FROM read_csv_auto('/d/e.csv') LIMIT 5\n", stdout)
}

func TestRunSchemaCommand(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"path":"/d/e.parquet","rows":3,"row_groups":1,"columns":[{"name":"id","physical_type":"INT64","optional":false,"repeated":false}]}`)

	code, stdout, _ := run(t, "--base-url", srv.URL, "schema", "/d/e.parquet")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "/d/e.parquet (3 rows, 1 row groups)")
	assert.Contains(t, stdout, "INT64")
}

func TestRunUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"no command":      {},
		"unknown command": {"unknown"},
		"bad flag":        {"--nope", "health"},
		"missing arg":     {"cat"},
		"bad output":      {"-o", "yaml", "health"},
		"query no sql":    {"query"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			code, _, stderr := run(t, args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRunRequestFailure(t *testing.T) {
	code, _, stderr := run(t, "--base-url", "http://127.0.0.1:1", "--timeout", "200ms", "health")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "request failed")
}
