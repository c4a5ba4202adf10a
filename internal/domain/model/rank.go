// Package model contains domain models passed between layers.
package model

import "time"

// UploadDateLayout is the ISO-8601 UTC layout used for DomainRecord.UploadDate.
const UploadDateLayout = "2006-01-02T15:04:05.000Z"

// Sample is one (date, rank) observation for a domain.
// Date is an ISO calendar date, YYYY-MM-DD; string order is chronological.
type Sample struct {
	Date string `json:"date"`
	Rank int    `json:"rank"`
}

// DomainRecord is a stored domain with its samples and upload metadata.
// JSON tags match the persisted blob layout.
type DomainRecord struct {
	Domain     string   `json:"domain"`
	Ranks      []Sample `json:"ranks"`
	UploadDate string   `json:"uploadDate"`
	Filename   string   `json:"filename"`
	Size       int64    `json:"size"`
}

// DomainSummary describes a stored domain without its samples.
type DomainSummary struct {
	Domain     string `json:"domain"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	UploadDate string `json:"uploadDate"`
	Count      int    `json:"count"`
}

// Summary returns the list view of r.
func (r DomainRecord) Summary() DomainSummary {
	return DomainSummary{
		Domain:     r.Domain,
		Filename:   r.Filename,
		Size:       r.Size,
		UploadDate: r.UploadDate,
		Count:      len(r.Ranks),
	}
}

// Source describes an uploaded file.
type Source struct {
	Filename string
	Size     int64
}

// FormatUploadDate renders t the way UploadDate is stored.
func FormatUploadDate(t time.Time) string {
	return t.UTC().Format(UploadDateLayout)
}

// AlignedSeries is a common date axis plus one value column per domain.
// Values[d][i] is nil when domain d has no sample on Axis[i].
type AlignedSeries struct {
	Axis    []string          `json:"axis"`
	Domains []string          `json:"domains"`
	Values  map[string][]*int `json:"values"`
}

// Empty reports whether no domain had a sample inside the window.
func (a AlignedSeries) Empty() bool {
	return len(a.Axis) == 0
}

// DomainStats summarizes one domain's ranks over a window.
type DomainStats struct {
	Domain string  `json:"domain"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Count  int     `json:"count"`
}
