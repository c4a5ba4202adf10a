// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/domain/ingest"
	"github.com/okian/rankscope/internal/presentation/chart"
	"github.com/okian/rankscope/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RanksDependencies
	DomainsDependencies
	SuggestDependencies
	CompareDependencies
}

// DefaultMaxUploadBytes caps multipart uploads unless overridden.
const DefaultMaxUploadBytes = 32 << 20

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	ranksHandler   *RanksHandler
	domainsHandler *DomainsHandler
	suggestHandler *SuggestHandler
	compareHandler *CompareHandler
}

type serverConfig struct {
	maxUploadBytes int64
	chartOptions   chart.Options
	log            logger.Logger
}

// ServerOption configures NewServer.
type ServerOption func(*serverConfig)

// WithMaxUploadBytes caps the size of POST /api/domains bodies.
func WithMaxUploadBytes(n int64) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithChartOptions sets the bubble radius bounds of generated charts.
func WithChartOptions(o chart.Options) ServerOption {
	return func(c *serverConfig) {
		c.chartOptions = o
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) ServerOption {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{
		maxUploadBytes: DefaultMaxUploadBytes,
		chartOptions:   chart.DefaultOptions(),
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		ranksHandler:   NewRanksHandler(deps),
		domainsHandler: NewDomainsHandler(deps, cfg.maxUploadBytes, cfg.log),
		suggestHandler: NewSuggestHandler(deps),
		compareHandler: NewCompareHandler(deps, cfg.chartOptions, cfg.log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/ranks", MetricsMiddleware(s.ranksHandler.HandleGetRanks, "ranks"))
	mux.HandleFunc("/api/domains", MetricsMiddleware(s.domainsHandler.HandleDomains, "domains"))
	mux.HandleFunc("/api/domains/", MetricsMiddleware(s.domainsHandler.HandleDeleteDomain, "domains_delete"))
	mux.HandleFunc("/api/suggest", MetricsMiddleware(s.suggestHandler.HandleSuggest, "suggest"))
	mux.HandleFunc("/api/compare", MetricsMiddleware(s.compareHandler.HandleCompare, "compare"))
	mux.HandleFunc("/api/export", MetricsMiddleware(s.compareHandler.HandleExport, "export"))
}

// errorResponse is the body of every failed /api request.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps service and domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ingest.ErrReadFailure),
		errors.Is(err, service.ErrTooFewDomains),
		errors.Is(err, service.ErrTooManyDomains):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnknownDomain),
		errors.Is(err, service.ErrNoData),
		errors.Is(err, service.ErrNoDataInRange):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrNoValidData),
		errors.Is(err, service.ErrEmptyUpload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
