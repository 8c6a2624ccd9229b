package domain

import (
	"context"
	"time"
)

// TimePoint is a single dated numeric observation.
type TimePoint struct {
	Day   time.Time
	Value float64
}

// Summary holds descriptive statistics for one metric. P50 and P90 are
// sketch estimates; the other fields are exact.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P90   float64
}

// LinePlot is a prepared time series. Ticks holds one label per distinct day.
type LinePlot struct {
	Title   string
	XLabel  string
	YLabel  string
	Points  []TimePoint
	Ticks   []string
	Summary *Summary
}

// ScatterPlot is a prepared set of paired values.
type ScatterPlot struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
}

// Renderer is the port for drawing prepared plots.
type Renderer interface {
	RenderLine(ctx context.Context, p LinePlot) error
	RenderScatter(ctx context.Context, p ScatterPlot) error
}
