package server

import (
	"bytes"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/bakscore/internal/server/public"
)

// entryDocument is the app shell served for navigations and unknown paths.
const entryDocument = "index.html"

// serviceWorkerScript must never be cached long-term or updates stall.
const serviceWorkerScript = "sw.js"

// newStaticHandler serves the embedded app shell. Paths that do not match an
// embedded asset fall back to the entry document so client-side routes and
// reloads keep working.
func newStaticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" {
			name = entryDocument
		}
		if _, err := fs.Stat(public.FS, name); err != nil {
			name = entryDocument
		}

		data, err := fs.ReadFile(public.FS, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		setCachePolicy(w, name)
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
	})
}

// setCachePolicy keeps the documents that control updates fresh and lets
// everything else be cached hard.
func setCachePolicy(w http.ResponseWriter, name string) {
	switch name {
	case entryDocument, serviceWorkerScript:
		w.Header().Set("Cache-Control", "no-cache")
	default:
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}
}
