// Package parquetfile stores datasets as Parquet files. The columnar table is
// flattened to one row per cell, plus one header row per column so that
// metrics without entries survive a round trip.
package parquetfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

// Ext is the file extension of parquet datasets.
const Ext = ".parquet"

// headerRow marks the row that carries a column's name.
const headerRow = -1

// CellRow is the on-disk record of one dataset cell.
type CellRow struct {
	Column int32  `parquet:"column"`
	Metric string `parquet:"metric,zstd"`
	Row    int32  `parquet:"row"`
	Cell   string `parquet:"cell,zstd"`
	Null   bool   `parquet:"null"`
}

// Repository reads and writes <dir>/<name>.parquet.
type Repository struct {
	dir string
	log *zap.Logger
}

var _ domain.DatasetRepository = (*Repository)(nil)

// New creates a Repository rooted at dir.
func New(dir string, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{dir: dir, log: log}
}

// Path returns the file backing the named dataset.
func (r *Repository) Path(name string) string {
	return filepath.Join(r.dir, name+Ext)
}

// Location implements domain.DatasetRepository.
func (r *Repository) Location(name string) string {
	return r.Path(name)
}

// WriteDataset truncates and rewrites the named file.
func (r *Repository) WriteDataset(ctx context.Context, name string, t *domain.Table) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %w", domain.ErrDatasetAccess, err)
	}
	f, err := os.Create(r.Path(name))
	if err != nil {
		return fmt.Errorf("%w: create file: %w", domain.ErrDatasetAccess, err)
	}

	rows := Flatten(t)
	w := parquet.NewGenericWriter[CellRow](f, parquet.Compression(&parquet.Zstd))
	if _, err := w.Write(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write rows: %w", domain.ErrDatasetAccess, err)
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: close writer: %w", domain.ErrDatasetAccess, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	r.log.Debug("parquet dataset written", zap.String("path", r.Path(name)), zap.Int("records", len(rows)))
	return nil
}

// ReadDataset reads the named file back into a table.
func (r *Repository) ReadDataset(ctx context.Context, name string) (*domain.Table, error) {
	f, err := os.Open(r.Path(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	defer f.Close() //nolint:errcheck

	rows, err := readAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedDataset, err)
	}
	t, err := Unflatten(rows)
	if err != nil {
		return nil, err
	}
	r.log.Debug("parquet dataset read", zap.String("path", r.Path(name)), zap.Int("records", len(rows)))
	return t, nil
}

func readAll(f *os.File) (rows []CellRow, err error) {
	defer func() {
		// parquet-go panics on some corrupt inputs.
		if p := recover(); p != nil {
			err = fmt.Errorf("read parquet: %v", p)
		}
	}()

	reader := parquet.NewGenericReader[CellRow](f)
	defer reader.Close() //nolint:errcheck

	rows = make([]CellRow, reader.NumRows())
	if len(rows) == 0 {
		return rows, nil
	}
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows[:n], nil
}

// Flatten converts t to records: a header record per column followed by one
// record per cell.
func Flatten(t *domain.Table) []CellRow {
	var rows []CellRow
	for i, c := range t.Columns {
		rows = append(rows, CellRow{Column: int32(i), Metric: c.Name, Row: headerRow})
		for j, cell := range c.Cells {
			rows = append(rows, CellRow{
				Column: int32(i),
				Metric: c.Name,
				Row:    int32(j),
				Cell:   cell.Text,
				Null:   !cell.Valid,
			})
		}
	}
	return rows
}

// Unflatten rebuilds a table from records in any order. Rows missing from a
// column become padding.
func Unflatten(rows []CellRow) (*domain.Table, error) {
	names := map[int32]string{}
	for _, r := range rows {
		if r.Row != headerRow {
			continue
		}
		if r.Column < 0 {
			return nil, fmt.Errorf("%w: negative column index %d", domain.ErrMalformedDataset, r.Column)
		}
		if prev, ok := names[r.Column]; ok && prev != r.Metric {
			return nil, fmt.Errorf("%w: column %d named %q and %q", domain.ErrMalformedDataset, r.Column, prev, r.Metric)
		}
		names[r.Column] = r.Metric
	}

	t := &domain.Table{Columns: make([]domain.Column, len(names))}
	for i := range t.Columns {
		name, ok := names[int32(i)]
		if !ok {
			return nil, fmt.Errorf("%w: column %d missing", domain.ErrMalformedDataset, i)
		}
		t.Columns[i].Name = name
	}

	for _, r := range rows {
		if r.Row == headerRow {
			continue
		}
		if r.Row < 0 || int(r.Column) >= len(t.Columns) || r.Column < 0 {
			return nil, fmt.Errorf("%w: cell (%d,%d) out of range", domain.ErrMalformedDataset, r.Column, r.Row)
		}
		col := &t.Columns[r.Column]
		for len(col.Cells) <= int(r.Row) {
			col.Cells = append(col.Cells, domain.Cell{})
		}
		if !r.Null {
			col.Cells[r.Row] = domain.TextCell(r.Cell)
		}
	}
	return t, nil
}
