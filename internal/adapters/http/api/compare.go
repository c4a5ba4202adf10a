package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/presentation/chart"
	"github.com/okian/rankscope/pkg/logger"
)

// CompareDependencies defines the interface for comparisons.
type CompareDependencies interface {
	Compare(ctx context.Context, req service.CompareRequest) (service.Comparison, error)
}

// CompareHandler serves comparisons as JSON and as HTML exports.
type CompareHandler struct {
	deps CompareDependencies
	opts chart.Options
	log  logger.Logger
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(deps CompareDependencies, opts chart.Options, log logger.Logger) *CompareHandler {
	return &CompareHandler{deps: deps, opts: opts, log: log}
}

// Charts holds the Chart.js configurations of a comparison.
type Charts struct {
	Line   chart.Config `json:"line"`
	Bubble chart.Config `json:"bubble"`
}

// compareResponse is the body of GET /api/compare.
type compareResponse struct {
	service.Comparison
	Charts Charts `json:"charts"`
}

// compareErrorResponse keeps per-domain failures visible on errors.
type compareErrorResponse struct {
	Error    string            `json:"error"`
	Failures map[string]string `json:"failures,omitempty"`
}

func (h *CompareHandler) compare(r *http.Request) (service.Comparison, error) {
	q := r.URL.Query()
	start, end := window(q)
	return h.deps.Compare(r.Context(), service.CompareRequest{
		Domains: domainsParam(q),
		Start:   start,
		End:     end,
	})
}

func (h *CompareHandler) fail(w http.ResponseWriter, r *http.Request, cmp service.Comparison, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "comparison failed", logger.Error(err))
	}
	writeJSON(w, status, compareErrorResponse{Error: err.Error(), Failures: cmp.Failures})
}

// HandleCompare handles GET /api/compare?domain=a&domain=b&start_date=&end_date=.
func (h *CompareHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cmp, err := h.compare(r)
	if err != nil {
		h.fail(w, r, cmp, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{
		Comparison: cmp,
		Charts: Charts{
			Line:   chart.LineConfig(cmp.Series),
			Bubble: chart.BubbleConfig(cmp.Stats, h.opts),
		},
	})
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// exportFilename builds a download name from the compared domains.
func exportFilename(domains []string) string {
	name := unsafeFilename.ReplaceAllString(strings.Join(domains, "_vs_"), "-")
	if name == "" {
		name = "comparison"
	}
	return "rankscope-" + name + ".html"
}

// HandleExport handles GET /api/export with the same parameters as
// /api/compare and returns a standalone HTML document.
func (h *CompareHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cmp, err := h.compare(r)
	if err != nil {
		h.fail(w, r, cmp, err)
		return
	}

	doc := chart.NewExportDocument(cmp.Series, cmp.Stats, cmp.Start, cmp.End, h.opts)
	doc.Failures = cmp.Failures

	var buf bytes.Buffer
	if err := chart.RenderHTML(&buf, doc); err != nil {
		h.log.Error(r.Context(), "export failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(cmp.Series.Domains)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
