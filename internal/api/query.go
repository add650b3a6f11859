package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/duckdesk/duckdesk/internal/auth"
	"github.com/duckdesk/duckdesk/internal/query"
	"github.com/duckdesk/duckdesk/internal/render"
)

type queryRequest struct {
	SQL    string `json:"sql"`
	Format string `json:"format"`
}

type queryResponse struct {
	Header []string       `json:"header"`
	Rows   [][]string     `json:"rows"`
	Stats  map[string]any `json:"stats"`
}

var tableFormats = map[string]func(render.Table) (string, string, error){
	"html": func(t render.Table) (string, string, error) {
		body, err := render.HTML(t)
		return "text/html; charset=utf-8", body, err
	},
	"text": func(t render.Table) (string, string, error) {
		return "text/plain; charset=utf-8", render.Text(t), nil
	},
	"markdown": func(t render.Table) (string, string, error) {
		return "text/markdown; charset=utf-8", render.Markdown(t), nil
	},
	"csv": func(t render.Table) (string, string, error) {
		return "text/csv; charset=utf-8", render.CSV(t), nil
	},
}

func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Renderer == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query renderer is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleQueryRunner); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request queryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid query request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}
	format := strings.ToLower(strings.TrimSpace(request.Format))
	if _, ok := tableFormats[format]; !ok && format != "" && format != "json" {
		writeError(r.Context(), w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "format must be one of json, html, text, markdown, csv", false, map[string]any{"format": request.Format})
		return
	}

	start := time.Now()
	table, err := deps.Renderer.Render(r.Context(), request.SQL)
	if err != nil {
		writeRenderError(w, r, err)
		return
	}

	if encode, ok := tableFormats[format]; ok {
		contentType, body, err := encode(table)
		if err != nil {
			writeError(r.Context(), w, http.StatusInternalServerError, "FORMAT_FAILED", err.Error(), false, nil)
			return
		}
		writeText(w, contentType, body)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Header: table.Header,
		Rows:   table.Rows,
		Stats: map[string]any{
			"rows":        len(table.Rows),
			"columns":     len(table.Header),
			"duration_ms": time.Since(start).Milliseconds(),
		},
	})
}

func writeRenderError(w http.ResponseWriter, r *http.Request, err error) {
	message := err.Error()
	var typed *query.Error
	if errors.As(err, &typed) {
		message = typed.Message()
	}

	switch {
	case errors.Is(err, query.ErrSession):
		writeError(r.Context(), w, http.StatusServiceUnavailable, "SESSION_FAILED", message, true, nil)
	case errors.Is(err, query.ErrCompile):
		writeError(r.Context(), w, http.StatusBadRequest, "COMPILE_FAILED", message, false, nil)
	case errors.Is(err, query.ErrExecution):
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "EXECUTION_FAILED", message, false, nil)
	case errors.Is(err, query.ErrNoResults):
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "NO_RESULTS", message, false, nil)
	case errors.Is(err, query.ErrFormat):
		writeError(r.Context(), w, http.StatusInternalServerError, "FORMAT_FAILED", message, false, nil)
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "QUERY_FAILED", message, true, nil)
	}
}
