package chart

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/okian/rankscope/internal/domain/model"
)

// ChartJSURL is the Chart.js build loaded by exported documents.
const ChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"

//go:embed export.html.tmpl
var exportTemplate string

var exportTmpl = template.Must(template.New("export").Parse(exportTemplate))

// ExportDocument is everything an exported comparison contains.
type ExportDocument struct {
	Title     string
	Start     string
	End       string
	Generated time.Time
	Line      Config
	Bubble    Config
	Stats     []model.DomainStats
	Failures  map[string]string
	ChartJS   string
}

// NewExportDocument builds the document for an aligned comparison.
func NewExportDocument(series model.AlignedSeries, stats []model.DomainStats, start, end string, opts Options) ExportDocument {
	title := "Domain rank comparison"
	if len(series.Domains) > 0 {
		title = "Rank comparison: " + strings.Join(series.Domains, " vs ")
	}
	return ExportDocument{
		Title:     title,
		Start:     start,
		End:       end,
		Generated: time.Now().UTC(),
		Line:      LineConfig(series),
		Bubble:    BubbleConfig(stats, opts),
		Stats:     stats,
		ChartJS:   ChartJSURL,
	}
}

// RenderHTML writes doc as a standalone HTML page.
func RenderHTML(w io.Writer, doc ExportDocument) error {
	if doc.ChartJS == "" {
		doc.ChartJS = ChartJSURL
	}
	if err := exportTmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("render export: %w", err)
	}
	return nil
}
