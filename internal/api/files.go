package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/duckdesk/duckdesk/internal/auth"
	"github.com/duckdesk/duckdesk/internal/config"
	"github.com/duckdesk/duckdesk/internal/fsindex"
	"github.com/duckdesk/duckdesk/internal/watch"
	"github.com/duckdesk/duckdesk/internal/workspace"
)

type filesResponse struct {
	Root  *fsindex.Node `json:"root"`
	Files int          `json:"files"`
}

func handleFiles(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Indexer == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "INDEXER_NOT_CONFIGURED", "directory indexer is not configured", false, nil)
		return
	}
	if err := requireRole(r, auth.RoleWorkspaceReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	root := strings.TrimSpace(r.URL.Query().Get("root"))
	if root == "" {
		root = cfg.Workspace.Root
	}
	tree, err := deps.Indexer.Index(r.Context(), root)
	if err != nil {
		writeIndexError(w, r, root, err)
		return
	}

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

func writeIndexError(w http.ResponseWriter, r *http.Request, root string, err error) {
	extra := map[string]any{"root": root}
	switch {
	case errors.Is(err, fsindex.ErrNotFound):
		writeError(r.Context(), w, http.StatusNotFound, "ROOT_NOT_FOUND", err.Error(), false, extra)
	case errors.Is(err, fsindex.ErrNotDirectory):
		writeError(r.Context(), w, http.StatusBadRequest, "ROOT_NOT_DIRECTORY", err.Error(), false, extra)
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "ROOT_UNREADABLE", err.Error(), true, extra)
	}
}

func handleFileContent(w http.ResponseWriter, r *http.Request) {
	if err := requireRole(r, auth.RoleWorkspaceReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PATH_REQUIRED", "path is required", false, nil)
		return
	}

	content, err := workspace.ReadTextFile(path)
	if err != nil {
		extra := map[string]any{"path": path}
		switch {
		case errors.Is(err, workspace.ErrNotFound):
			writeError(r.Context(), w, http.StatusNotFound, "FILE_NOT_FOUND", err.Error(), false, extra)
		case errors.Is(err, workspace.ErrNotUTF8):
			writeError(r.Context(), w, http.StatusUnprocessableEntity, "FILE_NOT_UTF8", err.Error(), false, extra)
		default:
			writeError(r.Context(), w, http.StatusInternalServerError, "FILE_UNREADABLE", err.Error(), true, extra)
		}
		return
	}
	writeText(w, "text/plain; charset=utf-8", content)
}

// handleWatch long-polls until the tree under root changes shape or the
// timeout passes.
func handleWatch(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if err := requireRole(r, auth.RoleWorkspaceReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	root := strings.TrimSpace(r.URL.Query().Get("root"))
	if root == "" {
		root = cfg.Workspace.Root
	}
	timeout := cfg.Workspace.WatchTimeout
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_TIMEOUT", "timeout must be a positive duration", false, map[string]any{"timeout": raw})
			return
		}
		timeout = parsed
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	change, err := watch.Wait(r.Context(), root, timeout, deps.Logger)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeIndexError(w, r, root, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}
