package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ztk/internal/apperr"
	"github.com/starford/ztk/internal/graph"
	"github.com/starford/ztk/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	index index.Searcher
	graph func() *graph.Graph
}

// NoteDetail is the /api/notes/{id} payload.
type NoteDetail struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

// Search handles GET /api/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.index.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Tags handles GET /api/tags: every tag in by-frequency order.
func (h *Handler) Tags(w http.ResponseWriter, _ *http.Request) {
	g := h.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("site not built yet"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": g.Frequencies()})
}

// Note handles GET /api/notes/{id}.
func (h *Handler) Note(w http.ResponseWriter, r *http.Request) {
	g := h.current()
	if g == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("site not built yet"))
		return
	}
	n, err := g.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, NoteDetail{
		ID:      n.ID,
		Title:   n.Title,
		Tags:    n.SortedTags(),
		Content: n.Content,
	})
}

func (h *Handler) current() *graph.Graph {
	if h.graph == nil {
		return nil
	}
	return h.graph()
}
