// Package chart turns aligned series and statistics into Chart.js
// configurations and a self-contained HTML export.
package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/rankscope/internal/domain/model"
)

// Palette colors datasets in order; it wraps for long comparisons.
var Palette = []string{
	"#38bdf8",
	"#f472b6",
	"#a3e635",
	"#facc15",
	"#c084fc",
	"#fb923c",
	"#2dd4bf",
	"#f87171",
}

// Dark theme colors shared by both charts.
const (
	gridColor    = "#334155"
	tickColor    = "#94a3b8"
	titleColor   = "#64748b"
	tooltipBG    = "#1e293b"
	tooltipTitle = "#f8fafc"
	tooltipBody  = "#cbd5e1"
)

// Default bubble radius bounds, in pixels.
const (
	DefaultMinRadius = 6
	DefaultMaxRadius = 40
)

// Options tunes the generated configurations.
type Options struct {
	MinRadius float64
	MaxRadius float64
}

// DefaultOptions returns the default bubble radius bounds.
func DefaultOptions() Options {
	return Options{MinRadius: DefaultMinRadius, MaxRadius: DefaultMaxRadius}
}

func (o Options) normalized() Options {
	if o.MinRadius <= 0 {
		o.MinRadius = DefaultMinRadius
	}
	if o.MaxRadius <= 0 {
		o.MaxRadius = DefaultMaxRadius
	}
	if o.MaxRadius < o.MinRadius {
		o.MaxRadius = o.MinRadius
	}
	return o
}

// Config is a Chart.js chart configuration.
type Config struct {
	Type    string         `json:"type"`
	Data    Data           `json:"data"`
	Options map[string]any `json:"options"`
}

// Data holds the labels and datasets of a chart.
type Data struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series. Data is []*int for line charts (nil renders as a
// gap) and []Point for bubble charts.
type Dataset struct {
	Label            string  `json:"label"`
	Data             any     `json:"data"`
	BorderColor      string  `json:"borderColor"`
	BackgroundColor  string  `json:"backgroundColor"`
	BorderWidth      int     `json:"borderWidth"`
	PointRadius      int     `json:"pointRadius,omitempty"`
	PointHoverRadius int     `json:"pointHoverRadius,omitempty"`
	Tension          float64 `json:"tension,omitempty"`
	Fill             bool    `json:"fill"`
	SpanGaps         bool    `json:"spanGaps"`
}

// Point is one bubble.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Color returns the palette color of the i-th dataset.
func Color(i int) string {
	return Palette[i%len(Palette)]
}

// withAlpha turns "#rrggbb" into an rgba() string.
func withAlpha(hex string, alpha float64) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return hex
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", v>>16&0xff, v>>8&0xff, v&0xff, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// LineConfig charts every domain of s against the shared axis. The y axis is
// reversed so rank 1 sits on top; missing days stay gaps.
func LineConfig(s model.AlignedSeries) Config {
	datasets := make([]Dataset, 0, len(s.Domains))
	for i, d := range s.Domains {
		color := Color(i)
		values := s.Values[d]
		if values == nil {
			values = make([]*int, len(s.Axis))
		}
		datasets = append(datasets, Dataset{
			Label:            d,
			Data:             values,
			BorderColor:      color,
			BackgroundColor:  withAlpha(color, 0.1),
			BorderWidth:      2,
			PointRadius:      3,
			PointHoverRadius: 6,
			Tension:          0.1,
		})
	}

	return Config{
		Type: "line",
		Data: Data{Labels: s.Axis, Datasets: datasets},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"interaction":         map[string]any{"mode": "index", "intersect": false},
			"plugins":             plugins(),
			"scales": map[string]any{
				"x": axis("", false),
				"y": axis("Rank", true),
			},
		},
	}
}

// BubbleConfig plots each domain at (mean rank, standard deviation) with a
// radius scaled from its volatility.
func BubbleConfig(stats []model.DomainStats, opts Options) Config {
	opts = opts.normalized()
	radii := VolatilityRadii(stats, opts.MinRadius, opts.MaxRadius)

	datasets := make([]Dataset, 0, len(stats))
	for i, st := range stats {
		color := Color(i)
		datasets = append(datasets, Dataset{
			Label:           st.Domain,
			Data:            []Point{{X: st.Mean, Y: st.StdDev, R: radii[st.Domain]}},
			BorderColor:     color,
			BackgroundColor: withAlpha(color, 0.5),
			BorderWidth:     1,
		})
	}

	return Config{
		Type: "bubble",
		Data: Data{Datasets: datasets},
		Options: map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"plugins":             plugins(),
			"scales": map[string]any{
				"x": axis("Mean rank", true),
				"y": axis("Std deviation", false),
			},
		},
	}
}

// VolatilityRadii maps each domain to a radius in [minR, maxR] by min-max
// scaling log1p(stdDev). When every domain has the same volatility all
// radii are the midpoint.
func VolatilityRadii(stats []model.DomainStats, minR, maxR float64) map[string]float64 {
	out := make(map[string]float64, len(stats))
	if len(stats) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, st := range stats {
		v := math.Log1p(st.StdDev)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	for _, st := range stats {
		if hi == lo {
			out[st.Domain] = (minR + maxR) / 2
			continue
		}
		v := math.Log1p(st.StdDev)
		out[st.Domain] = minR + (v-lo)/(hi-lo)*(maxR-minR)
	}
	return out
}

func plugins() map[string]any {
	return map[string]any{
		"title": map[string]any{"display": false},
		"tooltip": map[string]any{
			"backgroundColor": tooltipBG,
			"titleColor":      tooltipTitle,
			"bodyColor":       tooltipBody,
			"borderColor":     gridColor,
			"borderWidth":     1,
			"padding":         10,
		},
		"legend": map[string]any{"labels": map[string]any{"color": tickColor}},
	}
}

func axis(title string, reverse bool) map[string]any {
	a := map[string]any{
		"grid":  map[string]any{"color": gridColor, "drawBorder": false},
		"ticks": map[string]any{"color": tickColor},
	}
	if reverse {
		a["reverse"] = true
	}
	if title != "" {
		a["title"] = map[string]any{"display": true, "text": title, "color": titleColor}
	}
	return a
}
