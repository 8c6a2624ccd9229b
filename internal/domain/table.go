package domain

import (
	"context"
	"fmt"
	"strings"
)

// Cell is one field of a columnar dataset. A cell that is not Valid is a
// padding marker and carries no data.
type Cell struct {
	Text  string
	Valid bool
}

// TextCell returns a data cell.
func TextCell(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// Column is one metric's history in dataset order.
type Column struct {
	Name  string
	Cells []Cell
}

// Table is a columnar dataset: one column per metric, rows positional.
type Table struct {
	Columns []Column
}

// Rows returns the length of the longest column.
func (t *Table) Rows() int {
	n := 0
	for _, c := range t.Columns {
		if len(c.Cells) > n {
			n = len(c.Cells)
		}
	}
	return n
}

// Pad extends every column with padding cells up to Rows.
func (t *Table) Pad() {
	n := t.Rows()
	for i := range t.Columns {
		for len(t.Columns[i].Cells) < n {
			t.Columns[i].Cells = append(t.Columns[i].Cells, Cell{})
		}
	}
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate rejects blank and duplicate column names.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: column %d has no name", ErrMalformedDataset, i+1)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate column %q", ErrMalformedDataset, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// DatasetRepository is the port for persisting a user's whole dataset.
// Every write replaces the previous dataset of that name.
type DatasetRepository interface {
	ReadDataset(ctx context.Context, name string) (*Table, error)
	WriteDataset(ctx context.Context, name string, t *Table) error
	// Location describes where the named dataset lives, e.g. "alice.csv".
	Location(name string) string
}
