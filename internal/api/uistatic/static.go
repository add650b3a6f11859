package uistatic

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed all:app
var assets embed.FS

// Handler serves the explorer UI. Unknown paths fall back to index.html so
// deep links load the app; paths under /v1/ never do, so a mistyped API
// route still gets a 404.
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "app")
	if err != nil {
		return http.NotFoundHandler()
	}
	return HandlerFS(sub)
}

func HandlerFS(files fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(files))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		if name == "v1" || strings.HasPrefix(name, "v1/") {
			http.NotFound(w, r)
			return
		}
		if name == "." || name == "index.html" {
			serveIndex(w, r, files)
			return
		}
		if info, err := fs.Stat(files, name); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "no-cache")
			fileServer.ServeHTTP(w, r)
			return
		}
		serveIndex(w, r, files)
	})
}

func serveIndex(w http.ResponseWriter, r *http.Request, files fs.FS) {
	index, err := fs.ReadFile(files, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(index)
}
