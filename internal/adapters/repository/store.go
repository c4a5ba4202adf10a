// Package repository holds the sample store: every uploaded domain record,
// kept in upload order and persisted as one JSON object through a Blob.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/okian/rankscope/internal/domain/model"
	"github.com/okian/rankscope/pkg/logger"
	"github.com/okian/rankscope/pkg/metrics"
)

// DefaultSuggestLimit applies when Suggest is called with a non-positive limit.
const DefaultSuggestLimit = 10

// Store maps domain names to records. Key order is insertion order; a
// replaced record keeps its original position.
//
// Every mutation rewrites the whole blob. Concurrent writers are serialized
// and the last one wins.
type Store struct {
	mu      sync.RWMutex
	domains *orderedmap.OrderedMap[string, model.DomainRecord]
	blob    Blob
	log     logger.Logger
}

// Open loads the store from blob. A missing, unreadable or undecodable blob
// yields an empty store; the problem is logged, never returned.
func Open(ctx context.Context, blob Blob, opts ...Option) *Store {
	s := &Store{
		domains: orderedmap.New[string, model.DomainRecord](),
		blob:    blob,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := blob.Load(ctx)
	switch {
	case errors.Is(err, ErrBlobNotFound):
		s.log.Debug(ctx, "no stored domain data, starting empty")
	case err != nil:
		metrics.RecordStoreLoadFailure()
		s.log.Warn(ctx, "failed to load domain data, starting empty", logger.Error(err))
	default:
		loaded := orderedmap.New[string, model.DomainRecord]()
		if err := loaded.UnmarshalJSON(data); err != nil {
			metrics.RecordStoreLoadFailure()
			s.log.Warn(ctx, "stored domain data is corrupt, starting empty", logger.Error(err))
			break
		}
		s.domains = loaded
		s.log.Info(ctx, "loaded domain data", logger.Int("domains", loaded.Len()))
	}

	s.updateGauges()
	return s
}

// Put inserts or replaces the record for name and persists the store. A
// returned error wraps ErrPersistFailure; the record is stored regardless.
func (s *Store) Put(ctx context.Context, name string, rec model.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.domains.Set(name, rec)
	err := s.persistLocked(ctx)
	s.updateGaugesLocked()
	return err
}

// Get returns the record stored under name.
func (s *Store) Get(_ context.Context, name string) (model.DomainRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains.Get(name)
}

// Delete removes name and persists. It reports false, without persisting,
// when name is unknown. A persist failure is logged; the removal stands.
func (s *Store) Delete(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains.Delete(name); !ok {
		return false
	}
	_ = s.persistLocked(ctx)
	s.updateGaugesLocked()
	return true
}

// List returns a summary per stored domain in insertion order.
func (s *Store) List(_ context.Context) []model.DomainSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.DomainSummary, 0, s.domains.Len())
	for pair := s.domains.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Summary())
	}
	return out
}

// QuerySamples returns the samples of name. When start and end are both
// non-empty only samples with start <= date <= end are returned; when either
// is empty no filtering happens at all. Unknown names give an empty slice.
func (s *Store) QuerySamples(_ context.Context, name, start, end string) []model.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.domains.Get(name)
	if !ok {
		return []model.Sample{}
	}
	out := make([]model.Sample, 0, len(rec.Ranks))
	filter := start != "" && end != ""
	for _, sm := range rec.Ranks {
		if filter && (sm.Date < start || sm.Date > end) {
			continue
		}
		out = append(out, sm)
	}
	return out
}

// Suggest returns up to limit stored names containing prefix, ignoring case,
// in insertion order. An empty prefix matches nothing.
func (s *Store) Suggest(_ context.Context, prefix string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	out := []string{}
	if prefix == "" {
		return out
	}
	needle := strings.ToLower(prefix)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for pair := s.domains.Oldest(); pair != nil && len(out) < limit; pair = pair.Next() {
		if strings.Contains(strings.ToLower(pair.Key), needle) {
			out = append(out, pair.Key)
		}
	}
	return out
}

// Exists reports whether name is stored.
func (s *Store) Exists(_ context.Context, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.domains.Get(name)
	return ok
}

// Count returns the number of stored domains.
func (s *Store) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains.Len()
}

// SampleCount returns the number of samples across all domains.
func (s *Store) SampleCount(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampleCountLocked()
}

// Snapshot returns the bytes a persist would write now.
func (s *Store) Snapshot(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains.MarshalJSON()
}

// Close releases the blob backend.
func (s *Store) Close() error {
	return s.blob.Close()
}

func (s *Store) persistLocked(ctx context.Context) error {
	start := time.Now()
	err := s.writeLocked(ctx)
	metrics.RecordPersist(float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		s.log.Error(ctx, "failed to persist domain data", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistFailure, err)
	}
	return nil
}

func (s *Store) writeLocked(ctx context.Context) error {
	data, err := s.domains.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return s.blob.Save(ctx, data)
}

func (s *Store) sampleCountLocked() int {
	n := 0
	for pair := s.domains.Oldest(); pair != nil; pair = pair.Next() {
		n += len(pair.Value.Ranks)
	}
	return n
}

func (s *Store) updateGauges() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.updateGaugesLocked()
}

func (s *Store) updateGaugesLocked() {
	metrics.UpdateStoreSize(s.domains.Len(), s.sampleCountLocked())
}
