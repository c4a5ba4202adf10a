// Package service provides the comparison service behind the HTTP API and
// the rankctl CLI.
package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/rankscope/internal/adapters/repository"
	"github.com/okian/rankscope/internal/domain/align"
	"github.com/okian/rankscope/internal/domain/ingest"
	"github.com/okian/rankscope/internal/domain/model"
	"github.com/okian/rankscope/internal/domain/stats"
	"github.com/okian/rankscope/pkg/logger"
	"github.com/okian/rankscope/pkg/metrics"
)

// UploadRequest carries one CSV upload. Reader takes precedence over Text.
type UploadRequest struct {
	Text     string
	Reader   io.Reader
	Filename string
	Size     int64
	// Domain overrides the name derived from Filename when non-blank.
	Domain string
}

// UploadResult reports a stored upload.
type UploadResult struct {
	Success bool   `json:"success"`
	Domain  string `json:"domain"`
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
}

// CompareRequest selects domains and an inclusive date window.
type CompareRequest struct {
	Domains []string
	Start   string
	End     string
}

// Comparison is the result of Compare.
type Comparison struct {
	Start  string              `json:"start"`
	End    string              `json:"end"`
	Series model.AlignedSeries `json:"series"`
	Stats  []model.DomainStats `json:"stats"`
	// Failures maps a domain to the error that prevented fetching it.
	Failures map[string]string `json:"failures,omitempty"`
}

// Service implements the API dependencies for rankscope.
type Service struct {
	mu sync.RWMutex

	// Core components
	blob   repository.Blob
	store  *repository.Store
	source SampleSource

	// Configuration
	suggestLimit      int
	maxCompareDomains int
	fetchConcurrency  int
	now               func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBlob sets the backend the store is loaded from and persisted to.
func WithBlob(blob repository.Blob) Option {
	return func(s *Service) {
		if blob != nil {
			s.blob = blob
		}
	}
}

// WithSampleSource makes comparisons read samples from src instead of the
// local store. Uploads and /api/ranks keep using the store.
func WithSampleSource(src SampleSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithSuggestLimit sets the default number of suggestions.
func WithSuggestLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.suggestLimit = n
		}
	}
}

// WithMaxCompareDomains caps the domains of one comparison.
func WithMaxCompareDomains(n int) Option {
	return func(s *Service) {
		if n >= 2 {
			s.maxCompareDomains = n
		}
	}
}

// WithFetchConcurrency bounds parallel per-domain fetches.
func WithFetchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fetchConcurrency = n
		}
	}
}

// WithClock replaces time.Now for upload timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		suggestLimit:      repository.DefaultSuggestLimit,
		maxCompareDomains: 12,
		fetchConcurrency:  4,
		now:               time.Now,
		logger:            nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.blob == nil {
		s.blob = repository.NewMemoryBlob(nil)
	}

	s.store = repository.Open(ctx, s.blob, repository.WithLogger(s.logger.Named("store")))
	if s.source == nil {
		s.source = storeSource{store: s.store}
	}

	s.started = true
	s.logger.Info(ctx, "rankscope service started",
		logger.Int("domains", s.store.Count(ctx)),
		logger.Int("fetchConcurrency", s.fetchConcurrency),
		logger.Int("maxCompareDomains", s.maxCompareDomains),
	)
	return nil
}

// Stop releases the store backend.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "rankscope service stopped")
}

func (s *Service) storeOrErr() (*repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Upload ingests a CSV payload and stores it, replacing any previous record
// of the same name. Nothing is stored when ingestion fails. A failure to
// persist is logged and the upload still succeeds.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return UploadResult{}, err
	}

	src := model.Source{Filename: req.Filename, Size: req.Size}
	var (
		rec model.DomainRecord
		res ingest.ParseResult
	)
	if req.Reader != nil {
		rec, res, err = ingest.IngestReader(ctx, req.Reader, src, req.Domain, s.now())
	} else {
		if src.Size == 0 {
			src.Size = int64(len(req.Text))
		}
		rec, res, err = ingest.Ingest(req.Text, src, req.Domain, s.now())
	}
	if err != nil {
		metrics.RecordUpload("rejected")
		metrics.RecordRows(0, res.Skipped)
		s.logger.Warn(ctx, "upload rejected",
			logger.String("filename", req.Filename),
			logger.Int("skipped", res.Skipped),
			logger.Error(err),
		)
		return UploadResult{}, err
	}
	if rec.Domain == "" {
		metrics.RecordUpload("rejected")
		return UploadResult{}, fmt.Errorf("%w: no domain name for %q", ErrEmptyUpload, req.Filename)
	}

	if err := store.Put(ctx, rec.Domain, rec); err != nil {
		s.logger.Warn(ctx, "upload kept in memory only", logger.String("domain", rec.Domain), logger.Error(err))
	}

	metrics.RecordUpload("stored")
	metrics.RecordRows(len(rec.Ranks), res.Skipped)
	s.logger.Info(ctx, "domain uploaded",
		logger.String("domain", rec.Domain),
		logger.Int("count", len(rec.Ranks)),
		logger.Int("skipped", res.Skipped),
	)
	return UploadResult{Success: true, Domain: rec.Domain, Count: len(rec.Ranks), Skipped: res.Skipped}, nil
}

// Compare fetches every requested domain, aligns the samples on a shared
// date axis and computes per-domain statistics over the window. A domain
// that fails to fetch is reported in Comparison.Failures and left out.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (Comparison, error) {
	if _, err := s.storeOrErr(); err != nil {
		return Comparison{}, err
	}

	domains := distinctDomains(req.Domains)
	if len(domains) < 2 {
		metrics.RecordComparison("invalid", len(domains), 0)
		return Comparison{}, ErrTooFewDomains
	}
	if len(domains) > s.maxCompareDomains {
		metrics.RecordComparison("invalid", len(domains), 0)
		return Comparison{}, fmt.Errorf("%w: %d > %d", ErrTooManyDomains, len(domains), s.maxCompareDomains)
	}

	series, failures := s.fetchAll(ctx, domains, req.Start, req.End)
	out := Comparison{Start: req.Start, End: req.End, Failures: failures}

	total := 0
	for _, samples := range series {
		total += len(samples)
	}
	if total == 0 {
		metrics.RecordComparison("no_data", len(domains), 0)
		return out, ErrNoData
	}

	out.Series = align.Align(series, req.Start, req.End)
	if out.Series.Empty() {
		metrics.RecordComparison("no_data_in_range", len(domains), 0)
		return out, ErrNoDataInRange
	}

	windowed := make(map[string][]model.Sample, len(series))
	for d, samples := range series {
		windowed[d] = align.Window(samples, req.Start, req.End)
	}
	out.Stats = stats.ComputeAll(windowed)

	metrics.RecordComparison("ok", len(domains), len(out.Series.Axis))
	s.logger.Debug(ctx, "comparison built",
		logger.Strings("domains", domains),
		logger.Int("axis", len(out.Series.Axis)),
		logger.Int("failures", len(failures)),
	)
	return out, nil
}

func (s *Service) fetchAll(ctx context.Context, domains []string, start, end string) (map[string][]model.Sample, map[string]string) {
	results := make([][]model.Sample, len(domains))
	errs := make([]error, len(domains))

	var g errgroup.Group
	g.SetLimit(s.fetchConcurrency)
	for i, d := range domains {
		g.Go(func() error {
			samples, err := s.source.Samples(ctx, d, start, end)
			if err != nil {
				errs[i] = err
				return nil // isolated per domain
			}
			results[i] = samples
			return nil
		})
	}
	_ = g.Wait()

	series := make(map[string][]model.Sample, len(domains))
	var failures map[string]string
	for i, d := range domains {
		if errs[i] != nil {
			if failures == nil {
				failures = make(map[string]string)
			}
			failures[d] = errs[i].Error()
			metrics.RecordComparisonFailure()
			s.logger.Warn(ctx, "failed to fetch domain samples", logger.String("domain", d), logger.Error(errs[i]))
			continue
		}
		series[d] = results[i]
	}
	return series, failures
}

func distinctDomains(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// Ranks returns the stored samples of domain. Bounds filter only when both
// are set; an unknown domain yields no samples.
func (s *Service) Ranks(ctx context.Context, domain, start, end string) ([]model.Sample, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return nil, err
	}
	return store.QuerySamples(ctx, domain, start, end), nil
}

// Domains lists stored domains in upload order.
func (s *Service) Domains(ctx context.Context) ([]model.DomainSummary, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return nil, err
	}
	return store.List(ctx), nil
}

// Record returns the full stored record of domain.
func (s *Service) Record(ctx context.Context, domain string) (model.DomainRecord, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return model.DomainRecord{}, err
	}
	rec, ok := store.Get(ctx, domain)
	if !ok {
		return model.DomainRecord{}, ErrUnknownDomain
	}
	return rec, nil
}

// Delete removes domain or returns ErrUnknownDomain.
func (s *Service) Delete(ctx context.Context, domain string) error {
	store, err := s.storeOrErr()
	if err != nil {
		return err
	}
	if !store.Delete(ctx, domain) {
		return ErrUnknownDomain
	}
	s.logger.Info(ctx, "domain deleted", logger.String("domain", domain))
	return nil
}

// Suggest returns stored names containing q. A non-positive limit uses the
// configured default.
func (s *Service) Suggest(ctx context.Context, q string, limit int) ([]string, error) {
	store, err := s.storeOrErr()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.suggestLimit
	}
	return store.Suggest(ctx, q, limit), nil
}

// Exists reports whether domain is stored.
func (s *Service) Exists(ctx context.Context, domain string) bool {
	store, err := s.storeOrErr()
	if err != nil {
		return false
	}
	return store.Exists(ctx, domain)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":           s.started,
		"suggestLimit":      s.suggestLimit,
		"maxCompareDomains": s.maxCompareDomains,
		"fetchConcurrency":  s.fetchConcurrency,
	}

	if s.started {
		domains := s.store.Count(ctx)
		samples := s.store.SampleCount(ctx)
		out["totalDomains"] = domains
		out["totalSamples"] = samples
		_, local := s.source.(storeSource)
		out["remoteSource"] = !local

		metrics.UpdateStoreSize(domains, samples)
	}

	return out
}
