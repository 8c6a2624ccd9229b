package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

// sketchAccuracy is the relative accuracy of summary quantiles.
const sketchAccuracy = 0.01

// AnalysisService prepares plots and statistics from a MetricStore. It only
// reads snapshots and never mutates the store.
type AnalysisService struct {
	store    *MetricStore
	renderer domain.Renderer
	log      *zap.Logger
}

// NewAnalysisService creates an AnalysisService drawing with r.
func NewAnalysisService(store *MetricStore, r domain.Renderer, log *zap.Logger) *AnalysisService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisService{store: store, renderer: r, log: log}
}

// Correlation is the outcome of comparing two metrics on their shared dates.
// Coefficient is NaN when Defined is false, which happens with fewer than
// two pairs or when either side has no variance.
type Correlation struct {
	A, B        string
	Dates       []string
	X, Y        []float64
	Coefficient float64
	Defined     bool
}

// Series parses every entry of name into a dated point, ordered by day.
// Entries on the same day keep their recording order.
func (a *AnalysisService) Series(name string) ([]domain.TimePoint, error) {
	snap, err := a.store.GetData(name)
	if err != nil {
		return nil, err
	}
	points := make([]domain.TimePoint, 0, len(snap))
	for i := len(snap) - 1; i >= 0; i-- {
		p, err := point(snap[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Day.Before(points[j].Day)
	})
	return points, nil
}

func point(e domain.Entry) (domain.TimePoint, error) {
	day, err := e.Day()
	if err != nil {
		return domain.TimePoint{}, err
	}
	v, err := e.Value.Float()
	if err != nil {
		return domain.TimePoint{}, fmt.Errorf("%s: %w", e.Date, err)
	}
	return domain.TimePoint{Day: day, Value: v}, nil
}

// Summarize returns descriptive statistics for name, or nil when it has no
// entries.
func (a *AnalysisService) Summarize(name string) (*domain.Summary, error) {
	points, err := a.Series(name)
	if err != nil {
		return nil, err
	}
	return summarize(points)
}

func summarize(points []domain.TimePoint) (*domain.Summary, error) {
	if len(points) == 0 {
		return nil, nil
	}
	sketch, err := ddsketch.NewDefaultDDSketch(sketchAccuracy)
	if err != nil {
		return nil, fmt.Errorf("new sketch: %w", err)
	}

	sum := &domain.Summary{Min: math.MaxFloat64, Max: -math.MaxFloat64}
	var total float64
	for _, p := range points {
		if err := sketch.Add(p.Value); err != nil {
			return nil, fmt.Errorf("sketch add: %w", err)
		}
		sum.Count++
		total += p.Value
		sum.Min = math.Min(sum.Min, p.Value)
		sum.Max = math.Max(sum.Max, p.Value)
	}
	sum.Mean = total / float64(sum.Count)

	qs, err := sketch.GetValuesAtQuantiles([]float64{0.5, 0.9})
	if err != nil {
		return nil, fmt.Errorf("sketch quantiles: %w", err)
	}
	sum.P50, sum.P90 = qs[0], qs[1]
	return sum, nil
}

// Visualize renders name as a time series. Any entry that is not a dated
// number aborts the whole plot.
func (a *AnalysisService) Visualize(ctx context.Context, name string) (*domain.LinePlot, error) {
	points, err := a.Series(name)
	if err != nil {
		return nil, err
	}
	sum, err := summarize(points)
	if err != nil {
		return nil, err
	}

	p := domain.LinePlot{
		Title:   fmt.Sprintf("%s Over Time", name),
		XLabel:  "Date",
		YLabel:  name,
		Points:  points,
		Ticks:   dayTicks(points),
		Summary: sum,
	}
	if err := a.renderer.RenderLine(ctx, p); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	a.log.Debug("metric visualized", zap.String("metric", name), zap.Int("points", len(points)))
	return &p, nil
}

// dayTicks returns one label per distinct day of sorted points.
func dayTicks(points []domain.TimePoint) []string {
	var ticks []string
	var last time.Time
	for i, p := range points {
		if i > 0 && p.Day.Equal(last) {
			continue
		}
		ticks = append(ticks, p.Day.Format(domain.DateLayout))
		last = p.Day
	}
	return ticks
}

// Correlate compares metrics nameA and nameB on the dates both recorded.
// When a metric has several entries on one date the latest recorded wins.
// Dates where either value is empty are skipped. It returns
// domain.ErrEmptyIntersection, without rendering, when no date is shared.
func (a *AnalysisService) Correlate(ctx context.Context, nameA, nameB string) (*Correlation, error) {
	snapA, errA := a.store.GetData(nameA)
	snapB, errB := a.store.GetData(nameB)
	if errA != nil {
		return nil, errA
	}
	if errB != nil {
		return nil, errB
	}

	byDateA, err := latestByDate(nameA, snapA)
	if err != nil {
		return nil, err
	}
	byDateB, err := latestByDate(nameB, snapB)
	if err != nil {
		return nil, err
	}

	var common []string
	for d := range byDateA {
		if _, ok := byDateB[d]; ok {
			common = append(common, d)
		}
	}
	if len(common) == 0 {
		return nil, fmt.Errorf("%w between %s and %s", domain.ErrEmptyIntersection, nameA, nameB)
	}
	sort.Strings(common)

	c := &Correlation{A: nameA, B: nameB, Coefficient: math.NaN()}
	for _, d := range common {
		va, vb := byDateA[d], byDateB[d]
		if va.IsNull() || vb.IsNull() {
			continue
		}
		x, err := va.Float()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", nameA, d, err)
		}
		y, err := vb.Float()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", nameB, d, err)
		}
		c.Dates = append(c.Dates, d)
		c.X = append(c.X, x)
		c.Y = append(c.Y, y)
	}

	if len(c.X) >= 2 && stat.Variance(c.X, nil) > 0 && stat.Variance(c.Y, nil) > 0 {
		c.Coefficient = stat.Correlation(c.X, c.Y, nil)
		c.Defined = !math.IsNaN(c.Coefficient)
	}

	p := domain.ScatterPlot{
		Title:  correlationTitle(c),
		XLabel: nameA,
		YLabel: nameB,
		X:      c.X,
		Y:      c.Y,
	}
	if err := a.renderer.RenderScatter(ctx, p); err != nil {
		return nil, fmt.Errorf("render correlation: %w", err)
	}
	a.log.Debug("metrics correlated",
		zap.String("a", nameA), zap.String("b", nameB),
		zap.Int("pairs", len(c.X)), zap.Bool("defined", c.Defined))
	return c, nil
}

// latestByDate maps each date of a newest-first snapshot to its most
// recently recorded value.
func latestByDate(name string, snap []domain.Entry) (map[string]domain.Value, error) {
	out := make(map[string]domain.Value, len(snap))
	for i := len(snap) - 1; i >= 0; i-- {
		e := snap[i]
		if _, err := e.Day(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[e.Date] = e.Value
	}
	return out, nil
}

func correlationTitle(c *Correlation) string {
	if !c.Defined {
		return fmt.Sprintf("Correlation between %s and %s: undefined", c.A, c.B)
	}
	return fmt.Sprintf("Correlation between %s and %s: %.2f", c.A, c.B, c.Coefficient)
}
