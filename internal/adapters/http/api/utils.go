package api

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names shared by the rank, compare and export routes.
const (
	paramDomain    = "domain"
	paramDomains   = "domains"
	paramStartDate = "start_date"
	paramEndDate   = "end_date"
)

// domainsParam collects repeated ?domain= values and comma-separated
// ?domains= lists, in request order.
func domainsParam(q url.Values) []string {
	out := append([]string(nil), q[paramDomain]...)
	for _, list := range q[paramDomains] {
		for _, d := range strings.Split(list, ",") {
			if d = strings.TrimSpace(d); d != "" {
				out = append(out, d)
			}
		}
	}
	return out
}

// window returns the trimmed start_date and end_date parameters.
func window(q url.Values) (string, string) {
	return strings.TrimSpace(q.Get(paramStartDate)), strings.TrimSpace(q.Get(paramEndDate))
}

// limitParam parses ?limit=; empty means 0 (use the default).
func limitParam(q url.Values) (int, error) {
	raw := strings.TrimSpace(q.Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrInvalidLimit
	}
	return n, nil
}
