package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/rankscope/internal/adapters/rankapi"
	"github.com/okian/rankscope/internal/domain/model"
)

// RanksDependencies defines the interface for rank reads.
type RanksDependencies interface {
	Ranks(ctx context.Context, domain, start, end string) ([]model.Sample, error)
}

// RanksHandler serves the /api/ranks contract consumed by rankapi.Client.
type RanksHandler struct {
	deps RanksDependencies
}

// NewRanksHandler creates a new ranks handler.
func NewRanksHandler(deps RanksDependencies) *RanksHandler {
	return &RanksHandler{deps: deps}
}

// HandleGetRanks handles GET /api/ranks?domain=&start_date=&end_date=.
// Bounds filter only when both are given; an unknown domain yields an empty
// list.
func (h *RanksHandler) HandleGetRanks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	domain := strings.TrimSpace(q.Get(paramDomain))
	if domain == "" {
		writeError(w, http.StatusBadRequest, ErrMissingDomain)
		return
	}
	start, end := window(q)

	ranks, err := h.deps.Ranks(r.Context(), domain, start, end)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if ranks == nil {
		ranks = []model.Sample{}
	}
	writeJSON(w, http.StatusOK, rankapi.RanksResponse{Ranks: ranks})
}
