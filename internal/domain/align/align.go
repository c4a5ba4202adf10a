// Package align builds a shared date axis across several domains' samples.
//
// Alignment is an outer join on date clipped to a window. A domain without a
// sample on an axis date gets a nil value there: a missing day reads as
// "unranked that day", never as a continuation of the previous rank.
package align

import (
	"slices"

	"github.com/okian/rankscope/internal/domain/model"
)

// Align returns the sorted union of every date in series that falls inside
// [start, end] (string comparison; an empty bound is open) and, per domain,
// the rank recorded on each axis date. When a domain lists the same date
// twice the first sample wins.
func Align(series map[string][]model.Sample, start, end string) model.AlignedSeries {
	seen := make(map[string]struct{})
	lookup := make(map[string]map[string]int, len(series))

	for domain, samples := range series {
		byDate := make(map[string]int, len(samples))
		for _, s := range samples {
			if !InWindow(s.Date, start, end) {
				continue
			}
			seen[s.Date] = struct{}{}
			if _, dup := byDate[s.Date]; !dup {
				byDate[s.Date] = s.Rank
			}
		}
		lookup[domain] = byDate
	}

	axis := make([]string, 0, len(seen))
	for d := range seen {
		axis = append(axis, d)
	}
	slices.Sort(axis)

	domains := make([]string, 0, len(series))
	for domain := range series {
		domains = append(domains, domain)
	}
	slices.Sort(domains)

	values := make(map[string][]*int, len(series))
	for _, domain := range domains {
		column := make([]*int, len(axis))
		byDate := lookup[domain]
		for i, date := range axis {
			if rank, ok := byDate[date]; ok {
				column[i] = &rank
			}
		}
		values[domain] = column
	}

	return model.AlignedSeries{Axis: axis, Domains: domains, Values: values}
}

// InWindow reports whether date lies in [start, end]. Empty bounds are open.
func InWindow(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}

// Window returns the samples of one domain inside [start, end], preserving
// their order. It is what the statistics for a comparison are computed on.
func Window(samples []model.Sample, start, end string) []model.Sample {
	out := make([]model.Sample, 0, len(samples))
	for _, s := range samples {
		if InWindow(s.Date, start, end) {
			out = append(out, s)
		}
	}
	return out
}
