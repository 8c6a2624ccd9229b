package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

// DefaultHeight is the number of text rows a terminal plot occupies.
const DefaultHeight = 12

const scatterWidth = 48

// Terminal draws plots as text on out.
type Terminal struct {
	out    io.Writer
	height int
}

var _ domain.Renderer = (*Terminal)(nil)

// NewTerminal creates a Terminal renderer. A non-positive height uses
// DefaultHeight.
func NewTerminal(out io.Writer, height int) *Terminal {
	if height <= 0 {
		height = DefaultHeight
	}
	return &Terminal{out: out, height: height}
}

// RenderLine implements domain.Renderer.
func (t *Terminal) RenderLine(ctx context.Context, p domain.LinePlot) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")

	if len(p.Points) == 0 {
		b.WriteString(captionStyle.Render("(no data)"))
		b.WriteString("\n")
		_, err := io.WriteString(t.out, b.String())
		return err
	}

	values := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		values[i] = pt.Value
	}
	if len(values) == 1 {
		values = append(values, values[0])
	}
	b.WriteString(asciigraph.Plot(values,
		asciigraph.Height(t.height),
		asciigraph.Caption(fmt.Sprintf("%s by %s", p.YLabel, strings.ToLower(p.XLabel)))))
	b.WriteString("\n")

	if n := len(p.Ticks); n > 0 {
		b.WriteString(captionStyle.Render(fmt.Sprintf("%s .. %s (%d days)", p.Ticks[0], p.Ticks[n-1], n)))
		b.WriteString("\n")
	}
	if s := p.Summary; s != nil {
		b.WriteString(captionStyle.Render(SummaryLine(s)))
		b.WriteString("\n")
	}
	_, err := io.WriteString(t.out, b.String())
	return err
}

// SummaryLine formats s on one line.
func SummaryLine(s *domain.Summary) string {
	return fmt.Sprintf("n=%d min=%.2f max=%.2f mean=%.2f p50~%.2f p90~%.2f",
		s.Count, s.Min, s.Max, s.Mean, s.P50, s.P90)
}

// RenderScatter implements domain.Renderer.
func (t *Terminal) RenderScatter(ctx context.Context, p domain.ScatterPlot) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")
	if len(p.X) == 0 {
		b.WriteString(captionStyle.Render("(no data)"))
		b.WriteString("\n")
		_, err := io.WriteString(t.out, b.String())
		return err
	}

	b.WriteString(frameStyle.Render(scatterGrid(p.X, p.Y, scatterWidth, t.height)))
	b.WriteString("\n")
	b.WriteString(captionStyle.Render(fmt.Sprintf("x: %s [%s]  y: %s [%s]",
		p.XLabel, span(p.X), p.YLabel, span(p.Y))))
	b.WriteString("\n")
	_, err := io.WriteString(t.out, b.String())
	return err
}

// scatterGrid places each (x, y) pair on a width x height character grid.
// Cells hit more than once are drawn with '#'.
func scatterGrid(xs, ys []float64, width, height int) string {
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	xMin, xMax := bounds(xs)
	yMin, yMax := bounds(ys)
	for i := range xs {
		col := scale(xs[i], xMin, xMax, width)
		row := height - 1 - scale(ys[i], yMin, yMax, height)
		switch grid[row][col] {
		case ' ':
			grid[row][col] = '*'
		default:
			grid[row][col] = '#'
		}
	}
	lines := make([]string, height)
	for i, r := range grid {
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n")
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// scale maps v in [lo, hi] onto 0..n-1. A degenerate range maps to the middle.
func scale(v, lo, hi float64, n int) int {
	if hi == lo {
		return n / 2
	}
	i := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	return max(0, min(n-1, i))
}

func span(vs []float64) string {
	lo, hi := bounds(vs)
	return fmt.Sprintf("%g..%g", lo, hi)
}
