// Package memory implements an in-memory dataset repository for development
// and testing.
package memory

import (
	"context"
	"fmt"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

// DB holds datasets in memory, keyed by name.
type DB struct {
	datasets map[string]*domain.Table
	writes   int
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{datasets: make(map[string]*domain.Table)}
}

// Ensure interfaces are met.
var _ domain.DatasetRepository = (*DB)(nil)

// ReadDataset returns a copy of the named dataset.
func (db *DB) ReadDataset(ctx context.Context, name string) (*domain.Table, error) {
	t, ok := db.datasets[name]
	if !ok {
		return nil, fmt.Errorf("%w: no dataset %q", domain.ErrDatasetAccess, name)
	}
	return clone(t), nil
}

// WriteDataset replaces the named dataset with a copy of t.
func (db *DB) WriteDataset(ctx context.Context, name string, t *domain.Table) error {
	db.datasets[name] = clone(t)
	db.writes++
	return nil
}

// Location implements domain.DatasetRepository.
func (db *DB) Location(name string) string {
	return "memory:" + name
}

// Put stores t under name, for seeding.
func (db *DB) Put(name string, t *domain.Table) {
	db.datasets[name] = clone(t)
}

// Writes returns how many times WriteDataset was called.
func (db *DB) Writes() int {
	return db.writes
}

func clone(t *domain.Table) *domain.Table {
	out := &domain.Table{Columns: make([]domain.Column, len(t.Columns))}
	for i, c := range t.Columns {
		cells := make([]domain.Cell, len(c.Cells))
		copy(cells, c.Cells)
		out.Columns[i] = domain.Column{Name: c.Name, Cells: cells}
	}
	return out
}
