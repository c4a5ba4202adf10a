// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and env vars on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strings"
)

// Store backends understood by the repository package.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json records.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreBackend selects where the domain blob lives: file, badger or memory.
	StoreBackend string `koanf:"store_backend"`

	// StorePath is the blob file (file backend, ".zst" suffix compresses)
	// or the database directory (badger backend).
	StorePath string `koanf:"store_path"`

	// SuggestLimit caps domain-name suggestions.
	SuggestLimit int `koanf:"suggest_limit"`

	// MaxCompareDomains caps the number of domains in one comparison.
	MaxCompareDomains int `koanf:"max_compare_domains"`

	// FetchConcurrency bounds parallel per-domain sample fetches.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// RankAPIURL, when set, makes comparisons read samples from a remote
	// /api/ranks endpoint instead of the local store.
	RankAPIURL string `koanf:"rank_api_url"`

	// RankAPITimeoutMS bounds remote fetches; 0 means no timeout.
	RankAPITimeoutMS int `koanf:"rank_api_timeout_ms"`

	// MaxUploadBytes caps multipart CSV uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// BubbleMinRadius and BubbleMaxRadius bound the volatility bubble sizes.
	BubbleMinRadius float64 `koanf:"bubble_min_radius"`
	BubbleMaxRadius float64 `koanf:"bubble_max_radius"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		StoreBackend:      BackendFile,
		StorePath:         "rankscope-data.json",
		SuggestLimit:      10,
		MaxCompareDomains: 12,
		FetchConcurrency:  4,
		RankAPIURL:        "",
		RankAPITimeoutMS:  0,
		MaxUploadBytes:    32 << 20,
		BubbleMinRadius:   6,
		BubbleMaxRadius:   40,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreBackend != BackendFile && c.StoreBackend != BackendBadger && c.StoreBackend != BackendMemory:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	case c.StoreBackend != BackendMemory && strings.TrimSpace(c.StorePath) == "":
		return fmt.Errorf("%w: store_path must not be empty", ErrInvalidConfig)
	case c.MaxCompareDomains < 2:
		return fmt.Errorf("%w: max_compare_domains must be at least 2", ErrInvalidConfig)
	case c.FetchConcurrency < 1:
		return fmt.Errorf("%w: fetch_concurrency must be positive", ErrInvalidConfig)
	case c.RankAPITimeoutMS < 0:
		return fmt.Errorf("%w: rank_api_timeout_ms must not be negative", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.BubbleMinRadius <= 0 || c.BubbleMaxRadius < c.BubbleMinRadius:
		return fmt.Errorf("%w: bubble radii must satisfy 0 < min <= max", ErrInvalidConfig)
	}
	return nil
}
