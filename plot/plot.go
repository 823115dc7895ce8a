// Package plot draws growth curves from aggregated group statistics.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carbocation/growthcurve/config"
	"github.com/carbocation/growthcurve/pipeline"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoGroups means none of the requested groups has any data to draw.
var ErrNoGroups = errors.New("no groups selected for plotting")

type Format int

const (
	PNG Format = iota
	SVG
)

// FormatFromPath picks SVG for .svg files and PNG for everything else.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return SVG
	}

	return PNG
}

const (
	// 10 x 6 inches at 300 DPI.
	DPI    = 300.0
	Width  = 3000
	Height = 1800
)

// Palette is the categorical colour cycle. Groups take colours in selection
// order.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Curve is one group's line, ready to draw.
type Curve struct {
	Group  string
	Hours  []float64
	Values []float64
	Errors []float64
	Color  drawing.Color
}

// Curves extracts the selected groups from stats, in selection order, with
// the centre and error bar chosen by cfg. Groups without data are skipped.
func Curves(stats []pipeline.GroupStat, groups []string, cfg config.Config) []Curve {
	out := make([]Curve, 0, len(groups))

	for i, g := range groups {
		c := Curve{Group: g, Color: ColorFor(g, i, cfg.Colors)}

		// stats is sorted by hours, so each curve is too.
		for _, s := range stats {
			if s.Group != g {
				continue
			}

			c.Hours = append(c.Hours, s.Hours)
			if cfg.PlotMode == config.PlotMedian {
				c.Values = append(c.Values, s.Median)
			} else {
				c.Values = append(c.Values, s.Mean)
			}

			switch cfg.ErrorBars {
			case config.ErrorBarSD:
				c.Errors = append(c.Errors, s.Std)
			case config.ErrorBarSEM:
				c.Errors = append(c.Errors, s.SEM)
			}
		}

		if len(c.Hours) > 0 {
			out = append(out, c)
		}
	}

	return out
}

// ColorFor returns the override for group if one is configured and valid,
// and otherwise the palette colour for its position in the selection.
func ColorFor(group string, position int, overrides map[string]string) drawing.Color {
	if hex, ok := overrides[group]; ok {
		if c, err := parseHex(hex); err == nil {
			return c
		}
	}

	c, _ := parseHex(Palette[position%len(Palette)])
	return c
}

// parseHex accepts the forms the config validator allows: #rgb, #rgba,
// #rrggbb and #rrggbbaa. Colours without alpha are opaque.
func parseHex(hex string) (drawing.Color, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 || len(hex) == 4 {
		long := make([]byte, 0, 2*len(hex))
		for i := 0; i < len(hex); i++ {
			long = append(long, hex[i], hex[i])
		}
		hex = string(long)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return drawing.Color{}, fmt.Errorf("colour %q: expected #rgb, #rgba, #rrggbb or #rrggbbaa", hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("colour %q: %v", hex, err)
	}

	return drawing.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Render draws the selected groups and writes the image to w.
func Render(w io.Writer, stats []pipeline.GroupStat, groups []string, cfg config.Config, format Format) error {
	curves := Curves(stats, groups, cfg)
	if len(curves) == 0 {
		return ErrNoGroups
	}

	graph := Chart(curves, cfg)

	provider := chart.PNG
	if format == SVG {
		provider = chart.SVG
	}

	return graph.Render(provider, w)
}

// Chart lays out the curves. The y axis always covers the error bars, and
// zero when blank correction is on.
func Chart(curves []Curve, cfg config.Config) chart.Chart {
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	if cfg.ApplyBlankCorrection {
		yMin, yMax = 0, 0
	}

	series := make([]chart.Series, 0, len(curves))
	for _, c := range curves {
		for i, x := range c.Hours {
			xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)

			lo, hi := c.Values[i], c.Values[i]
			if i < len(c.Errors) {
				lo, hi = lo-c.Errors[i], hi+c.Errors[i]
			}
			yMin, yMax = math.Min(yMin, lo), math.Max(yMax, hi)
		}

		series = append(series, errorBarSeries{
			ContinuousSeries: chart.ContinuousSeries{
				Name:    c.Group,
				XValues: c.Hours,
				YValues: c.Values,
				Style: chart.Style{
					StrokeColor: c.Color,
					StrokeWidth: 1.5,
					DotColor:    c.Color,
					DotWidth:    4,
				},
			},
			Errors: c.Errors,
		})
	}

	xRange := padRange(xMin, xMax)
	yRange := padRange(yMin, yMax)

	ylabel := "OD600 (Raw)"
	if cfg.ApplyBlankCorrection {
		ylabel = "OD600 (Blank Corrected)"
	}

	mode := "Mean"
	if cfg.PlotMode == config.PlotMedian {
		mode = "Median"
	}

	grid := chart.Style{
		StrokeColor:     drawing.Color{R: 0, G: 0, B: 0, A: 64},
		StrokeWidth:     0.5,
		StrokeDashArray: []float64{4, 4},
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Growth Curve (%s)", mode),
		Width:  Width,
		Height: Height,
		DPI:    DPI,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Time (Hours)",
			Range:          xRange,
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Name:           ylabel,
			Range:          yRange,
			GridMajorStyle: grid,
		},
		Series: series,
	}

	// The zero line goes first so the legend box is drawn over it.
	if cfg.ApplyBlankCorrection {
		graph.Elements = append(graph.Elements, zeroLine(yRange))
	}
	graph.Elements = append(graph.Elements, chart.Legend(&graph))

	return graph
}

// padRange widens [min, max] by 5% on each side, and to a unit interval
// when every value is the same.
func padRange(min, max float64) *chart.ContinuousRange {
	if math.IsInf(min, 0) || math.IsInf(max, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}

	if max-min < 1e-12 {
		return &chart.ContinuousRange{Min: min - 0.5, Max: max + 0.5}
	}

	pad := 0.05 * (max - min)
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}
