package api

import (
	"net/http"
	"strings"

	"github.com/duckdesk/duckdesk/internal/auth"
	"github.com/duckdesk/duckdesk/internal/fsindex"
	"github.com/duckdesk/duckdesk/internal/storage"
)

func handleRemoteFiles(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Remote == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "REMOTE_NOT_CONFIGURED", "object store is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleWorkspaceReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	prefix := strings.Trim(r.URL.Query().Get("prefix"), "/")
	objects, err := deps.Remote.List(r.Context(), prefix)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "REMOTE_LIST_FAILED", err.Error(), true, map[string]any{"prefix": prefix})
		return
	}
	keys := make([]string, 0, len(objects))
	for _, object := range objects {
		keys = append(keys, object.Key)
	}

	rootName := "remote"
	if bucket, _, err := storage.ParseLocation(deps.Remote.Location("")); err == nil && bucket != "" {
		rootName = bucket
	}
	tree := fsindex.BuildFromKeys(rootName, prefix, keys, deps.Remote.Location)

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		writeJSON(w, http.StatusOK, filesResponse{Root: tree, Files: len(tree.Files())})
	case "html":
		body, err := fsindex.HTML(tree)
		if err != nil {
			writeError(r.Context(), w, http.StatusInternalServerError, "FORMAT_FAILED", err.Error(), false, nil)
			return
		}
		writeText(w, "text/html; charset=utf-8", body)
	default:
		writeError(r.Context(), w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "format must be json or html", false, nil)
	}
}
