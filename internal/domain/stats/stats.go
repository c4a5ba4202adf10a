// Package stats summarizes a domain's rank samples.
package stats

import (
	"math"
	"slices"

	"github.com/okian/rankscope/internal/domain/model"
)

// Compute returns population statistics over samples. The second result is
// false when samples is empty.
//
// Sums run in slice order so identical input gives bit-identical output.
func Compute(domain string, samples []model.Sample) (model.DomainStats, bool) {
	n := len(samples)
	if n == 0 {
		return model.DomainStats{}, false
	}

	lo, hi := samples[0].Rank, samples[0].Rank
	var sum float64
	for _, s := range samples {
		sum += float64(s.Rank)
		lo = min(lo, s.Rank)
		hi = max(hi, s.Rank)
	}
	mean := sum / float64(n)

	var sq float64
	for _, s := range samples {
		d := float64(s.Rank) - mean
		sq += d * d
	}

	return model.DomainStats{
		Domain: domain,
		Mean:   mean,
		StdDev: math.Sqrt(sq / float64(n)),
		Min:    lo,
		Max:    hi,
		Count:  n,
	}, true
}

// ComputeAll computes stats for every domain with at least one sample,
// sorted by domain name.
func ComputeAll(series map[string][]model.Sample) []model.DomainStats {
	domains := make([]string, 0, len(series))
	for d := range series {
		domains = append(domains, d)
	}
	slices.Sort(domains)

	out := make([]model.DomainStats, 0, len(domains))
	for _, d := range domains {
		if st, ok := Compute(d, series[d]); ok {
			out = append(out, st)
		}
	}
	return out
}
