// Package csvfile stores datasets as comma-separated files named after the
// dataset, one column per metric. Empty fields are padding.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

// Ext is the file extension of csv datasets.
const Ext = ".csv"

// Repository reads and writes <dir>/<name>.csv.
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

// ReadDataset parses the named file. The first record is the header. An
// empty file is an empty dataset.
func (r *Repository) ReadDataset(ctx context.Context, name string) (*domain.Table, error) {
	f, err := os.Open(r.Path(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	defer f.Close() //nolint:errcheck

	t, err := decode(f)
	if err != nil {
		return nil, err
	}
	r.log.Debug("csv dataset read", zap.String("path", r.Path(name)), zap.Int("columns", len(t.Columns)))
	return t, nil
}

func decode(rd io.Reader) (*domain.Table, error) {
	cr := csv.NewReader(rd)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &domain.Table{}, nil
	}
	if err != nil {
		return nil, readError(err)
	}

	t := &domain.Table{Columns: make([]domain.Column, len(header))}
	for i, h := range header {
		t.Columns[i].Name = h
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		for i, field := range rec {
			cell := domain.Cell{}
			if field != "" {
				cell = domain.TextCell(field)
			}
			t.Columns[i].Cells = append(t.Columns[i].Cells, cell)
		}
	}
	return t, nil
}

func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", domain.ErrMalformedDataset, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
}

// WriteDataset truncates and rewrites the named file. The write is not
// atomic.
func (r *Repository) WriteDataset(ctx context.Context, name string, t *domain.Table) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %w", domain.ErrDatasetAccess, err)
	}
	f, err := os.Create(r.Path(name))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	if err := encode(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	r.log.Debug("csv dataset written", zap.String("path", r.Path(name)), zap.Int("rows", t.Rows()))
	return nil
}

func encode(w io.Writer, t *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	rows := t.Rows()
	rec := make([]string, len(t.Columns))
	for row := 0; row < rows; row++ {
		for i, c := range t.Columns {
			rec[i] = ""
			if row < len(c.Cells) && c.Cells[row].Valid {
				rec[i] = c.Cells[row].Text
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
