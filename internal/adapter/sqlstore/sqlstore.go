// Package sqlstore persists datasets in a SQL database. PostgreSQL and SQLite
// share one schema; every cell of a user's dataset is one row of
// metric_cells.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

// headerRow marks the row that carries a column's name.
const headerRow = -1

type dialect struct {
	name   string
	driver string
	// placeholder returns the bind marker for the n-th argument, 1-based.
	placeholder func(n int) string
	timeType    string
}

var (
	postgres = dialect{
		name:        "postgres",
		driver:      "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		timeType:    "TIMESTAMPTZ",
	}
	sqlite = dialect{
		name:        "sqlite",
		driver:      "sqlite",
		placeholder: func(int) string { return "?" },
		timeType:    "DATETIME",
	}
)

// Store wraps a *sql.DB and implements domain.DatasetRepository.
type Store struct {
	sql     *sql.DB
	dialect dialect
	log     *zap.Logger
	now     func() time.Time
}

var _ domain.DatasetRepository = (*Store)(nil)

// OpenPostgres connects to PostgreSQL, pings, and runs migrations.
func OpenPostgres(connStr string, log *zap.Logger) (*Store, error) {
	s, err := sql.Open(postgres.driver, connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)
	return open(s, postgres, log)
}

// OpenSQLite opens (or creates) the SQLite file at path and runs migrations.
func OpenSQLite(path string, log *zap.Logger) (*Store, error) {
	s, err := sql.Open(sqlite.driver, fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; SQLite locks the whole file anyway.
	s.SetMaxOpenConns(1)
	return open(s, sqlite, log)
}

func open(s *sql.DB, d dialect, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	st := &Store{sql: s, dialect: d, log: log, now: time.Now}
	if err := st.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	log.Debug("sql store ready", zap.String("dialect", d.name))
	return st, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.sql.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS datasets (username TEXT PRIMARY KEY, saved_at " + s.dialect.timeType + " NOT NULL);",
		"CREATE TABLE IF NOT EXISTS metric_cells (username TEXT NOT NULL, col INTEGER NOT NULL, metric TEXT NOT NULL, pos INTEGER NOT NULL, cell TEXT, PRIMARY KEY (username, col, pos));",
		"CREATE INDEX IF NOT EXISTS idx_metric_cells_username ON metric_cells(username);",
	}
	for _, stmt := range stmts {
		if _, err := s.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// bind rewrites ? markers into the dialect's placeholders.
func (s *Store) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Location implements domain.DatasetRepository.
func (s *Store) Location(name string) string {
	return s.dialect.name + ":" + name
}

// ReadDataset returns the dataset last written for name.
func (s *Store) ReadDataset(ctx context.Context, name string) (*domain.Table, error) {
	var one int
	err := s.sql.QueryRowContext(ctx, s.bind("SELECT 1 FROM datasets WHERE username=?;"), name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no dataset for %q", domain.ErrDatasetAccess, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}

	rows, err := s.sql.QueryContext(ctx,
		s.bind("SELECT col, metric, pos, cell FROM metric_cells WHERE username=? ORDER BY col, pos;"), name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	defer rows.Close() //nolint:errcheck

	t := &domain.Table{}
	for rows.Next() {
		var (
			col, row int
			metric   string
			cell     sql.NullString
		)
		if err := rows.Scan(&col, &metric, &row, &cell); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
		}
		if row == headerRow {
			if col != len(t.Columns) {
				return nil, fmt.Errorf("%w: column %d out of sequence", domain.ErrMalformedDataset, col)
			}
			t.Columns = append(t.Columns, domain.Column{Name: metric})
			continue
		}
		if col != len(t.Columns)-1 || row < 0 {
			return nil, fmt.Errorf("%w: cell (%d,%d) has no column", domain.ErrMalformedDataset, col, row)
		}
		c := &t.Columns[col]
		for len(c.Cells) < row {
			c.Cells = append(c.Cells, domain.Cell{})
		}
		c.Cells = append(c.Cells, domain.Cell{Text: cell.String, Valid: cell.Valid})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	s.log.Debug("sql dataset read", zap.String("username", name), zap.Int("columns", len(t.Columns)))
	return t, nil
}

// WriteDataset replaces the dataset of name in one transaction.
func (s *Store) WriteDataset(ctx context.Context, name string, t *domain.Table) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", domain.ErrDatasetAccess, err)
	}
	if err := s.write(ctx, tx, name, t); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %w", domain.ErrDatasetAccess, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx: %w", domain.ErrDatasetAccess, err)
	}
	s.log.Debug("sql dataset written", zap.String("username", name), zap.Int("columns", len(t.Columns)))
	return nil
}

func (s *Store) write(ctx context.Context, tx *sql.Tx, name string, t *domain.Table) error {
	if _, err := tx.ExecContext(ctx, s.bind("DELETE FROM metric_cells WHERE username=?;"), name); err != nil {
		return fmt.Errorf("delete cells: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.bind("DELETE FROM datasets WHERE username=?;"), name); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.bind("INSERT INTO datasets(username, saved_at) VALUES(?, ?);"), name, s.now().UTC()); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.bind("INSERT INTO metric_cells(username, col, metric, pos, cell) VALUES(?, ?, ?, ?, ?);"))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	for i, c := range t.Columns {
		if _, err := stmt.ExecContext(ctx, name, i, c.Name, headerRow, nil); err != nil {
			return fmt.Errorf("insert column %s: %w", c.Name, err)
		}
		for j, cell := range c.Cells {
			v := sql.NullString{String: cell.Text, Valid: cell.Valid}
			if _, err := stmt.ExecContext(ctx, name, i, c.Name, j, v); err != nil {
				return fmt.Errorf("insert cell %s[%d]: %w", c.Name, j, err)
			}
		}
	}
	return nil
}
