package api

import (
	"context"
	"net/http"
)

// SuggestDependencies defines the interface for name suggestions.
type SuggestDependencies interface {
	Suggest(ctx context.Context, q string, limit int) ([]string, error)
}

// SuggestHandler handles autocomplete requests.
type SuggestHandler struct {
	deps SuggestDependencies
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(deps SuggestDependencies) *SuggestHandler {
	return &SuggestHandler{deps: deps}
}

// HandleSuggest handles GET /api/suggest?q=&limit=.
func (h *SuggestHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	limit, err := limitParam(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	names, err := h.deps.Suggest(r.Context(), q.Get("q"), limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}
