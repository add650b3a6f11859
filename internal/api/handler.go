package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duckdesk/duckdesk/internal/auth"
	"github.com/duckdesk/duckdesk/internal/config"
	"github.com/duckdesk/duckdesk/internal/fsindex"
	"github.com/duckdesk/duckdesk/internal/observability"
	"github.com/duckdesk/duckdesk/internal/query"
	"github.com/duckdesk/duckdesk/internal/render"
	"github.com/duckdesk/duckdesk/internal/storage"
)

type ReadinessCheck func(ctx context.Context) error

type QueryRenderer interface {
	Render(ctx context.Context, sqlText string) (render.Table, error)
}

type DirectoryIndexer interface {
	Index(ctx context.Context, root string) (*fsindex.Node, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Renderer          QueryRenderer
	Indexer           DirectoryIndexer
	Remote            storage.ObjectStore
	UI                http.Handler
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	routes := map[string]http.HandlerFunc{
		"POST /v1/query": func(w http.ResponseWriter, r *http.Request) {
			handleQuery(deps, w, r)
		},
		"GET /v1/files": func(w http.ResponseWriter, r *http.Request) {
			handleFiles(cfg, deps, w, r)
		},
		"GET /v1/files/content": func(w http.ResponseWriter, r *http.Request) {
			handleFileContent(w, r)
		},
		"GET /v1/files/watch": func(w http.ResponseWriter, r *http.Request) {
			handleWatch(cfg, deps, w, r)
		},
		"GET /v1/datasets/preview": func(w http.ResponseWriter, r *http.Request) {
			handleDatasetPreview(w, r)
		},
		"GET /v1/datasets/schema": func(w http.ResponseWriter, r *http.Request) {
			handleDatasetSchema(deps, w, r)
		},
		"GET /v1/remote/files": func(w http.ResponseWriter, r *http.Request) {
			handleRemoteFiles(deps, w, r)
		},
	}

	protected := http.NewServeMux()
	for pattern, handler := range routes {
		protected.HandleFunc(pattern, handler)
	}

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	for pattern := range routes {
		mux.Handle(pattern, protectedHandler)
	}
	if deps.UI != nil {
		mux.Handle("GET /{path...}", deps.UI)
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

// CheckEngine runs a trivial statement to prove a session can be opened.
func CheckEngine(engine query.Engine) ReadinessCheck {
	return func(ctx context.Context) error {
		if engine == nil {
			return fmt.Errorf("query engine is not configured")
		}
		if _, err := engine.Execute(ctx, query.Request{SQL: "SELECT 1"}); err != nil {
			return fmt.Errorf("query engine: %w", err)
		}
		return nil
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func CheckObjectStore(store pinger) ReadinessCheck {
	return func(ctx context.Context) error {
		if store == nil {
			return nil
		}
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func requireRole(r *http.Request, role string) error {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	if identity.HasRole(role) {
		return nil
	}
	return fmt.Errorf("missing required role %q", role)
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
