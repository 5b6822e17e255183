package renderer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/etnz/curves"
	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
)

// ChartOptions configures RenderChart.
type ChartOptions struct {
	Title         string
	Width, Height int // 1200x600 if zero
	// Benchmarks lists the columns drawn with a dashed line.
	Benchmarks []string
}

// ErrNotEnoughPoints is returned when a view has less than two dates to draw.
var ErrNotEnoughPoints = errors.New("not enough points to draw a chart")

// RenderChart draws the view as a PNG line chart.
//
// On a logarithmic scale the curves are drawn as log10 of their values and the y axis ticks
// are labelled with the actual values, so equal ratios look like equal distances.
func RenderChart(w io.Writer, v curves.View, opts ChartOptions) error {
	if v.IsEmpty() || len(v.Days) < 2 {
		return ErrNotEnoughPoints
	}
	logScale := v.Scale == curves.Logarithmic

	times := make([]time.Time, len(v.Days))
	for i, on := range v.Days {
		times[i] = on.Time()
	}

	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	series := make([]chart.Series, 0, len(v.Columns))
	for i, c := range v.Columns {
		ys := make([]float64, len(c.Values))
		for j, value := range c.Values {
			y := value.InexactFloat64()
			if logScale {
				if y <= 0 {
					return fmt.Errorf("%s on %v: cannot draw %v on a logarithmic scale", c.Name, v.Days[j], value)
				}
				y = math.Log10(y)
			}
			ys[j] = y
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
		style := chart.Style{
			StrokeColor: chart.GetDefaultColor(i),
			StrokeWidth: 2,
		}
		if lo.Contains(opts.Benchmarks, c.Name) {
			style.StrokeDashArray = []float64{6, 4}
		}
		series = append(series, chart.TimeSeries{Name: c.Name, XValues: times, YValues: ys, Style: style})
	}
	if maxY <= minY {
		maxY = minY + 1
	}

	yAxis := chart.YAxis{Name: "value"}
	if logScale {
		yAxis.Range = &chart.ContinuousRange{Min: minY, Max: maxY}
		yAxis.Ticks = logTicks(minY, maxY)
	}

	width, height := opts.Width, opts.Height
	if width == 0 {
		width = 1200
	}
	if height == 0 {
		height = 600
	}
	ch := chart.Chart{
		Title:      opts.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:      yAxis,
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// logTicks returns ticks on 1, 2 and 5 times powers of ten between the log10 bounds lower
// and upper. The bounds themselves are used when no such value falls in between.
func logTicks(lower, upper float64) []chart.Tick {
	var ticks []chart.Tick
	for exp := math.Floor(lower); exp <= math.Ceil(upper); exp++ {
		for _, m := range []float64{1, 2, 5} {
			value := m * math.Pow(10, exp)
			y := math.Log10(value)
			if y < lower || y > upper {
				continue
			}
			ticks = append(ticks, chart.Tick{Value: y, Label: tickLabel(value)})
		}
	}
	if len(ticks) < 2 {
		ticks = []chart.Tick{
			{Value: lower, Label: tickLabel(math.Pow(10, lower))},
			{Value: upper, Label: tickLabel(math.Pow(10, upper))},
		}
	}
	return ticks
}

func tickLabel(v float64) string {
	if v >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2g", v)
}
