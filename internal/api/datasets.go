package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/duckdesk/duckdesk/internal/auth"
	"github.com/duckdesk/duckdesk/internal/datasets"
	"github.com/duckdesk/duckdesk/internal/storage"
)

const defaultPreviewLimit = 100

func handleDatasetPreview(w http.ResponseWriter, r *http.Request) {
	if err := requireRole(r, auth.RoleWorkspaceReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PATH_REQUIRED", "path is required", false, nil)
		return
	}
	limit := defaultPreviewLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer", false, map[string]any{"limit": raw})
			return
		}
		limit = parsed
	}

	sqlText, err := datasets.PreviewSQL(path, limit)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "UNSUPPORTED_DATASET", err.Error(), false, map[string]any{"path": path})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path, "sql": sqlText})
}

func handleDatasetSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if err := requireRole(r, auth.RoleWorkspaceReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PATH_REQUIRED", "path is required", false, nil)
		return
	}
	extra := map[string]any{"path": path}
	if !strings.HasSuffix(strings.ToLower(path), ".parquet") {
		writeError(r.Context(), w, http.StatusBadRequest, "UNSUPPORTED_DATASET", "schema inspection supports parquet only", false, extra)
		return
	}

	if !storage.IsRemote(path) {
		schema, err := datasets.InspectParquet(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				writeError(r.Context(), w, http.StatusNotFound, "FILE_NOT_FOUND", err.Error(), false, extra)
				return
			}
			writeError(r.Context(), w, http.StatusUnprocessableEntity, "SCHEMA_FAILED", err.Error(), false, extra)
			return
		}
		writeJSON(w, http.StatusOK, schema)
		return
	}

	if deps.Remote == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "REMOTE_NOT_CONFIGURED", "object store is not configured", false, extra)
		return
	}
	key, err := deps.Remote.KeyOf(path)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LOCATION", err.Error(), false, extra)
		return
	}
	info, err := deps.Remote.Stat(r.Context(), key)
	if err != nil {
		writeRemoteError(w, r, err, extra)
		return
	}
	object, err := deps.Remote.Get(r.Context(), key)
	if err != nil {
		writeRemoteError(w, r, err, extra)
		return
	}
	defer func() { _ = object.Close() }()
	schema, err := datasets.InspectParquetReader(object, info.Size, path)
	if err != nil {
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "SCHEMA_FAILED", err.Error(), false, extra)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func writeRemoteError(w http.ResponseWriter, r *http.Request, err error, extra map[string]any) {
	if errors.Is(err, storage.ErrObjectNotFound) {
		writeError(r.Context(), w, http.StatusNotFound, "FILE_NOT_FOUND", err.Error(), false, extra)
		return
	}
	writeError(r.Context(), w, http.StatusBadGateway, "REMOTE_READ_FAILED", err.Error(), true, extra)
}
