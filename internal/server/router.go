// Package server serves a built site for local preview, together with a
// small JSON API over the note graph and a live rebuild event stream.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/ztk/internal/graph"
	"github.com/starford/ztk/internal/index"
)

// Deps are the collaborators of the preview router.
type Deps struct {
	// OutDir is the built site served at /.
	OutDir string
	// Index answers /api/search.
	Index index.Searcher
	// Graph returns the graph of the most recent build.
	Graph func() *graph.Graph
	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
}

// NewRouter creates the preview router.
func NewRouter(d Deps) chi.Router {
	h := &Handler{index: d.Index, graph: d.Graph}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/tags", h.Tags)
		r.Get("/notes/{id}", h.Note)
		if d.Events != nil {
			r.Get("/events", d.Events.ServeHTTP)
		}
	})

	r.Handle("/*", http.FileServer(http.Dir(d.OutDir)))
	return r
}
