// Package seed generates synthetic rank histories for demos and tests.
package seed

import (
	"fmt"
	"strconv"
	"time"
)

// Default generation parameters.
const (
	DefaultDomains  = 3
	DefaultDays     = 90
	DefaultBaseRank = 1000
	DefaultStep     = 0.08
	dateLayout      = "2006-01-02"
	domainSuffix    = ".example"
)

// Config controls a generation run.
type Config struct {
	// Domains names the generated domains. When empty, Count names are
	// generated as "site-1.example", "site-2.example", ...
	Domains []string
	Count   int

	// Start is the first day; zero means Days before today (UTC).
	Start time.Time
	Days  int

	// Seed makes a run reproducible. Equal configs yield equal files.
	Seed uint64

	// BaseRank is the median starting rank. Each domain starts at a
	// multiple of it so series do not overlap from day one.
	BaseRank int

	// Step is the relative daily drift of the random walk.
	Step float64

	// MonthTokens writes "YYYY-MM" for the first day of every month.
	MonthTokens bool
}

// File is one generated CSV upload.
type File struct {
	Name    string
	Domain  string
	Content string
	Rows    int
}

func (c Config) normalized(now time.Time) (Config, error) {
	if c.Days <= 0 {
		c.Days = DefaultDays
	}
	if len(c.Domains) == 0 {
		if c.Count <= 0 {
			c.Count = DefaultDomains
		}
		c.Domains = make([]string, c.Count)
		for i := range c.Domains {
			c.Domains[i] = "site-" + strconv.Itoa(i+1) + domainSuffix
		}
	}
	seen := make(map[string]struct{}, len(c.Domains))
	for _, d := range c.Domains {
		if d == "" {
			return c, fmt.Errorf("%w: empty domain name", ErrInvalidConfig)
		}
		if _, dup := seen[d]; dup {
			return c, fmt.Errorf("%w: duplicate domain %q", ErrInvalidConfig, d)
		}
		seen[d] = struct{}{}
	}
	if c.Start.IsZero() {
		c.Start = now.UTC().Truncate(24*time.Hour).AddDate(0, 0, -c.Days)
	}
	if c.BaseRank <= 0 {
		c.BaseRank = DefaultBaseRank
	}
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	return c, nil
}
