package service

import (
	"context"
	"time"

	"github.com/okian/rankscope/internal/adapters/repository"
	"github.com/okian/rankscope/internal/domain/model"
	"github.com/okian/rankscope/pkg/metrics"
)

// SampleSource yields one domain's samples for a comparison window.
// rankapi.Client satisfies it for the remote variant.
type SampleSource interface {
	Samples(ctx context.Context, domain, start, end string) ([]model.Sample, error)
}

// storeSource reads samples from the local store. It returns a domain's full
// history; the comparison clips it to the window like remote samples.
type storeSource struct {
	store *repository.Store
}

func (s storeSource) Samples(ctx context.Context, domain, _, _ string) ([]model.Sample, error) {
	began := time.Now()
	defer func() {
		metrics.RecordFetchLatency("store", float64(time.Since(began).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.QuerySamples(ctx, domain, "", ""), nil
}
