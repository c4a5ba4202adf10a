package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/rankscope/internal/adapters/rankapi"
	"github.com/okian/rankscope/internal/adapters/repository"
	"github.com/okian/rankscope/internal/config"
	"github.com/okian/rankscope/pkg/logger"
)

// ConfigOptions translates cfg into service options, opening the configured
// store backend. When cfg.RankAPIURL is set comparisons read from that
// endpoint. Extra options are applied last.
func ConfigOptions(ctx context.Context, cfg *config.Config, extra ...Option) ([]Option, error) {
	blob, err := repository.NewBlob(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store backend: %w", err)
	}

	opts := []Option{
		WithBlob(blob),
		WithSuggestLimit(cfg.SuggestLimit),
		WithMaxCompareDomains(cfg.MaxCompareDomains),
		WithFetchConcurrency(cfg.FetchConcurrency),
	}
	if cfg.RankAPIURL != "" {
		opts = append(opts, WithSampleSource(RemoteSource(cfg.RankAPIURL, cfg.RankAPITimeoutMS)))
	}
	return append(opts, extra...), nil
}

// RemoteSource returns a rankapi client for base. A positive timeoutMS
// bounds every request.
func RemoteSource(base string, timeoutMS int) SampleSource {
	var opts []rankapi.Option
	if timeoutMS > 0 {
		opts = append(opts, rankapi.WithTimeout(time.Duration(timeoutMS)*time.Millisecond))
	}
	return rankapi.New(base, opts...)
}

// NewFromConfig builds and starts a Service for cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger, extra ...Option) (*Service, error) {
	opts, err := ConfigOptions(ctx, cfg, append([]Option{WithLogger(log)}, extra...)...)
	if err != nil {
		return nil, err
	}
	svc := New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
