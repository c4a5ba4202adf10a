package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/okian/rankscope/internal/domain/model"
)

// palette returns the emphasis helpers, plain when colors are off.
type palette struct {
	bold, red, green, yellow func(...any) string
}

func (a *App) palette() palette {
	if !a.colors {
		return palette{bold: fmt.Sprint, red: fmt.Sprint, green: fmt.Sprint, yellow: fmt.Sprint}
	}
	mk := func(attrs ...color.Attribute) func(...any) string {
		c := color.New(attrs...)
		c.EnableColor()
		return c.SprintFunc()
	}
	return palette{
		bold:   mk(color.Bold),
		red:    mk(color.FgRed),
		green:  mk(color.FgGreen),
		yellow: mk(color.FgYellow),
	}
}

func newTable(w io.Writer, headers []string, rightAligned bool) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	if rightAligned {
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
	}
	return table
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDomains(w io.Writer, domains []model.DomainSummary) error {
	table := newTable(w, []string{"Domain", "Samples", "Filename", "Size", "Uploaded"}, false)
	rows := make([][]string, 0, len(domains))
	for _, d := range domains {
		rows = append(rows, []string{d.Domain, strconv.Itoa(d.Count), d.Filename, strconv.FormatInt(d.Size, 10), d.UploadDate})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func writeSamples(w io.Writer, samples []model.Sample) error {
	table := newTable(w, []string{"Date", "Rank"}, true)
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{s.Date, strconv.Itoa(s.Rank)})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// writeStats renders one row per domain. The most volatile domain is shown
// in red and the steadiest in green unless all are equally volatile.
func writeStats(w io.Writer, stats []model.DomainStats, p palette) error {
	most, least := volatilityExtremes(stats)
	table := newTable(w, []string{"Domain", "Samples", "Mean", "Std dev", "Best", "Worst"}, true)
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		name := st.Domain
		switch {
		case most != least && st.Domain == most:
			name = p.red(name)
		case most != least && st.Domain == least:
			name = p.green(name)
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(st.Count),
			strconv.FormatFloat(st.Mean, 'f', 2, 64),
			strconv.FormatFloat(st.StdDev, 'f', 2, 64),
			strconv.Itoa(st.Min),
			strconv.Itoa(st.Max),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// volatilityExtremes returns the domains with the highest and lowest
// standard deviation. Ties keep the first in order.
func volatilityExtremes(stats []model.DomainStats) (most, least string) {
	if len(stats) == 0 {
		return "", ""
	}
	hi, lo := 0, 0
	for i, st := range stats {
		if st.StdDev > stats[hi].StdDev {
			hi = i
		}
		if st.StdDev < stats[lo].StdDev {
			lo = i
		}
	}
	return stats[hi].Domain, stats[lo].Domain
}
