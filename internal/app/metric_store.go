// Package app holds the application services and business logic.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

// MetricStore is the session-scoped collection of one user's metric logs.
// It is the source of truth between the persisted dataset and memory.
type MetricStore struct {
	username string
	repo     domain.DatasetRepository
	log      *zap.Logger
	now      func() time.Time

	metrics map[string]*domain.MetricLog
	order   []string
}

// Option configures a MetricStore.
type Option func(*MetricStore)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *MetricStore) { s.log = l }
}

// WithClock sets the clock used to date entries recorded without a date.
func WithClock(now func() time.Time) Option {
	return func(s *MetricStore) { s.now = now }
}

// NewMetricStore creates an empty store for username backed by repo.
func NewMetricStore(username string, repo domain.DatasetRepository, opts ...Option) *MetricStore {
	s := &MetricStore{
		username: username,
		repo:     repo,
		log:      zap.NewNop(),
		now:      time.Now,
		metrics:  make(map[string]*domain.MetricLog),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Username returns the owner of the session.
func (s *MetricStore) Username() string { return s.username }

// DatasetName returns where Load reads from and Save writes to.
func (s *MetricStore) DatasetName() string { return s.repo.Location(s.username) }

// Load reads the user's dataset and replaces the log of every metric it
// names. Padding cells are dropped and the remaining cells are pushed in
// dataset order, so the last row becomes the head. Metrics that are not in
// the dataset are kept. Nothing is changed if the dataset cannot be read.
func (s *MetricStore) Load(ctx context.Context) error {
	t, err := s.repo.ReadDataset(ctx, s.username)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.DatasetName(), err)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("load %s: %w", s.DatasetName(), err)
	}

	logs := make([]*domain.MetricLog, len(t.Columns))
	for i, col := range t.Columns {
		l := domain.NewMetricLog()
		for _, c := range col.Cells {
			if !c.Valid || c.Text == "" {
				continue
			}
			l.Push(domain.ParseCell(c.Text))
		}
		logs[i] = l
	}

	for i, col := range t.Columns {
		if _, ok := s.metrics[col.Name]; !ok {
			s.order = append(s.order, col.Name)
		}
		s.metrics[col.Name] = logs[i]
	}

	s.log.Debug("dataset loaded",
		zap.String("dataset", s.DatasetName()),
		zap.Int("metrics", len(t.Columns)),
		zap.Int("rows", t.Rows()))
	return nil
}

// Save rewrites the whole dataset. Each column lists a metric's entries
// oldest first and is padded to the length of the longest column.
func (s *MetricStore) Save(ctx context.Context) error {
	t := s.table()
	if err := s.repo.WriteDataset(ctx, s.username, t); err != nil {
		return fmt.Errorf("save %s: %w", s.DatasetName(), err)
	}
	s.log.Debug("dataset saved",
		zap.String("dataset", s.DatasetName()),
		zap.Int("metrics", len(t.Columns)),
		zap.Int("rows", t.Rows()))
	return nil
}

func (s *MetricStore) table() *domain.Table {
	t := &domain.Table{Columns: make([]domain.Column, 0, len(s.order))}
	for _, name := range s.order {
		snap := s.metrics[name].Snapshot()
		cells := make([]domain.Cell, len(snap))
		for i, e := range snap {
			cells[len(snap)-1-i] = domain.TextCell(e.Cell())
		}
		t.Columns = append(t.Columns, domain.Column{Name: name, Cells: cells})
	}
	t.Pad()
	return t
}

// AddMetric registers name with an empty log. Registering an existing
// metric is a no-op.
func (s *MetricStore) AddMetric(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidName
	}
	if _, ok := s.metrics[name]; ok {
		return nil
	}
	s.metrics[name] = domain.NewMetricLog()
	s.order = append(s.order, name)
	s.log.Debug("metric added", zap.String("metric", name))
	return nil
}

// AddData records value for name. A blank date means today.
func (s *MetricStore) AddData(name, value, date string) (domain.Entry, error) {
	l, ok := s.metrics[name]
	if !ok {
		return domain.Entry{}, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	date = strings.TrimSpace(date)
	if date == "" {
		date = domain.FormatDay(s.now())
	} else if err := domain.ValidateDate(date); err != nil {
		return domain.Entry{}, err
	}

	e := domain.NewEntry(date, value)
	l.Push(e)
	s.log.Debug("entry recorded", zap.String("metric", name), zap.String("date", e.Date))
	return e, nil
}

// ViewMetrics returns the registered metric names in registration order.
func (s *MetricStore) ViewMetrics() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// GetData returns the entries of name, most recent first.
func (s *MetricStore) GetData(name string) ([]domain.Entry, error) {
	l, ok := s.metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	return l.Snapshot(), nil
}

// UndoLast removes the most recent entry of name. deleted is false when the
// metric has no entries.
func (s *MetricStore) UndoLast(name string) (e domain.Entry, deleted bool, err error) {
	l, ok := s.metrics[name]
	if !ok {
		return domain.Entry{}, false, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	e, deleted = l.Pop()
	if deleted {
		s.log.Debug("entry removed", zap.String("metric", name), zap.String("date", e.Date))
	}
	return e, deleted, nil
}
