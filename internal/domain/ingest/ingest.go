// Package ingest turns uploaded CSV text into a date-sorted domain record.
//
// The format is one `date,rank[,...]` sample per line with no header
// handling. Unparseable rows are dropped without failing the upload; the
// number dropped is reported in ParseResult.Skipped.
package ingest

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/rankscope/internal/domain/model"
)

const csvSuffix = ".csv"

// ParseResult is the outcome of parsing one CSV payload.
type ParseResult struct {
	// Samples are sorted ascending by date; duplicate dates are kept.
	Samples []model.Sample
	// Skipped counts non-blank rows that were discarded.
	Skipped int
}

// Parse extracts samples from text. It never fails; an empty Samples slice
// means nothing was usable.
func Parse(text string) ParseResult {
	var res ParseResult
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sample, ok := parseRow(line)
		if !ok {
			res.Skipped++
			continue
		}
		res.Samples = append(res.Samples, sample)
	}
	slices.SortStableFunc(res.Samples, func(a, b model.Sample) int {
		return strings.Compare(a.Date, b.Date)
	})
	return res
}

func parseRow(line string) (model.Sample, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return model.Sample{}, false
	}
	date := strings.TrimSpace(parts[0])
	if date == "" {
		return model.Sample{}, false
	}
	rank, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.Sample{}, false
	}
	return model.Sample{Date: NormalizeDate(date), Rank: rank}, true
}

// NormalizeDate expands a YYYY-MM token to YYYY-MM-01. Any other token is
// returned unchanged and unvalidated.
func NormalizeDate(token string) string {
	if isYearMonth(token) {
		return token + "-01"
	}
	return token
}

func isYearMonth(s string) bool {
	if len(s) != 7 || s[4] != '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 4 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ResolveDomainName returns explicit when it is set, otherwise the filename
// with a trailing ".csv" extension removed.
func ResolveDomainName(explicit, filename string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	return strings.TrimSuffix(filename, csvSuffix)
}

// Ingest parses text into a complete record for domainName (resolved from
// the source filename when empty). It returns ErrNoValidData when no row is
// usable; the caller must then leave the store untouched.
func Ingest(text string, src model.Source, domainName string, now time.Time) (model.DomainRecord, ParseResult, error) {
	res := Parse(text)
	if len(res.Samples) == 0 {
		return model.DomainRecord{}, res, ErrNoValidData
	}
	return model.DomainRecord{
		Domain:     ResolveDomainName(domainName, src.Filename),
		Ranks:      res.Samples,
		UploadDate: model.FormatUploadDate(now),
		Filename:   src.Filename,
		Size:       src.Size,
	}, res, nil
}

// IngestReader reads r to the end and ingests its content. Read errors wrap
// ErrReadFailure. A zero src.Size is replaced by the number of bytes read.
func IngestReader(ctx context.Context, r io.Reader, src model.Source, domainName string, now time.Time) (model.DomainRecord, ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return model.DomainRecord{}, ParseResult{}, fmt.Errorf("%w: %w", ErrReadFailure, err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return model.DomainRecord{}, ParseResult{}, fmt.Errorf("%w: %s: %w", ErrReadFailure, src.Filename, err)
	}
	if src.Size == 0 {
		src.Size = int64(len(raw))
	}
	return Ingest(string(raw), src, domainName, now)
}
