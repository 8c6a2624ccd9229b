package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

var (
	pngWidth  = 10 * vg.Inch
	pngHeight = 5 * vg.Inch
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// PNG writes each plot to <dir>/<slug of title>.png.
type PNG struct {
	dir string
	log *zap.Logger

	// Saved holds the path of the last written image.
	Saved string
	// OnSave, if set, is called with the path of every written image.
	OnSave func(path string)
}

var _ domain.Renderer = (*PNG)(nil)

// NewPNG creates a PNG renderer writing into dir.
func NewPNG(dir string, log *zap.Logger) *PNG {
	if log == nil {
		log = zap.NewNop()
	}
	return &PNG{dir: dir, log: log}
}

// Path returns the file a plot with the given title is written to.
func (r *PNG) Path(title string) string {
	return filepath.Join(r.dir, Slug(title)+".png")
}

// Slug lowercases title and joins its alphanumeric runs with dashes.
func Slug(title string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "plot"
	}
	return s
}

// RenderLine implements domain.Renderer. Days are placed on the x axis as
// Unix seconds and labelled with one tick per distinct day.
func (r *PNG) RenderLine(ctx context.Context, lp domain.LinePlot) error {
	p := plot.New()
	p.Title.Text = lp.Title
	p.X.Label.Text = lp.XLabel
	p.Y.Label.Text = lp.YLabel
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(lp.Points))
	var ticks []plot.Tick
	for i, pt := range lp.Points {
		xys[i].X = float64(pt.Day.Unix())
		xys[i].Y = pt.Value
		label := pt.Day.Format(domain.DateLayout)
		if len(ticks) == 0 || ticks[len(ticks)-1].Label != label {
			ticks = append(ticks, plot.Tick{Value: xys[i].X, Label: label})
		}
	}
	if len(xys) > 0 {
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("line: %w", err)
		}
		p.Add(line, points)
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	if lp.Summary != nil {
		p.Legend.Add(SummaryLine(lp.Summary))
		p.Legend.Top = true
	}
	return r.save(p, lp.Title)
}

// RenderScatter implements domain.Renderer.
func (r *PNG) RenderScatter(ctx context.Context, sp domain.ScatterPlot) error {
	p := plot.New()
	p.Title.Text = sp.Title
	p.X.Label.Text = sp.XLabel
	p.Y.Label.Text = sp.YLabel
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(sp.X))
	for i := range sp.X {
		xys[i].X, xys[i].Y = sp.X[i], sp.Y[i]
	}
	if len(xys) > 0 {
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("scatter: %w", err)
		}
		p.Add(s)
	}
	return r.save(p, sp.Title)
}

func (r *PNG) save(p *plot.Plot, title string) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	path := r.Path(title)
	if err := p.Save(pngWidth, pngHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	r.Saved = path
	r.log.Debug("plot saved", zap.String("path", path))
	if r.OnSave != nil {
		r.OnSave(path)
	}
	return nil
}
