package plot

import (
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// errorBarSeries is a line series that also draws a capped vertical whisker
// of +/- Errors[i] around each point.
type errorBarSeries struct {
	chart.ContinuousSeries
	Errors []float64
}

func (es errorBarSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	es.ContinuousSeries.Render(r, canvasBox, xrange, yrange, defaults)

	if len(es.Errors) == 0 {
		return
	}

	style := es.Style.InheritFrom(defaults)

	capHalf := canvasBox.Width() / 300
	if capHalf < 2 {
		capHalf = 2
	}

	for i, x := range es.XValues {
		if i >= len(es.Errors) || i >= len(es.YValues) {
			break
		}

		e := es.Errors[i]
		if e <= 0 || math.IsNaN(e) || math.IsInf(e, 0) {
			continue
		}

		px := canvasBox.Left + xrange.Translate(x)
		top := canvasBox.Bottom - yrange.Translate(es.YValues[i]+e)
		bottom := canvasBox.Bottom - yrange.Translate(es.YValues[i]-e)

		style.WriteDrawingOptionsToRenderer(r)

		r.MoveTo(px, top)
		r.LineTo(px, bottom)
		r.Stroke()

		r.MoveTo(px-capHalf, top)
		r.LineTo(px+capHalf, top)
		r.Stroke()

		r.MoveTo(px-capHalf, bottom)
		r.LineTo(px+capHalf, bottom)
		r.Stroke()
	}
}

// zeroLine draws an unlabelled horizontal rule at y = 0 across the canvas.
// It is an element rather than a series so that the legend leaves it out.
// yrange must be the chart's own y range, whose domain the chart sets
// before elements are drawn.
func zeroLine(yrange *chart.ContinuousRange) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		y := canvasBox.Bottom - yrange.Translate(0)

		chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 0.8}.WriteDrawingOptionsToRenderer(r)
		r.MoveTo(canvasBox.Left, y)
		r.LineTo(canvasBox.Right, y)
		r.Stroke()
	}
}
