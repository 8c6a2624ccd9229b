package parquetfile

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

func raggedTable() *domain.Table {
	return &domain.Table{Columns: []domain.Column{
		{Name: "weight", Cells: []domain.Cell{
			domain.TextCell("2024-01-01|80"), domain.TextCell("2024-01-02|79.5"), domain.TextCell("2024-01-03|79"),
		}},
		{Name: "sleep", Cells: []domain.Cell{domain.TextCell("2024-01-01|7"), {}, {}}},
		{Name: "steps", Cells: []domain.Cell{domain.TextCell("|9000"), domain.TextCell("2024-01-03|12000"), {}}},
		{Name: "mood"},
	}}
}

func TestRoundTrip(t *testing.T) {
	repo := New(t.TempDir(), nil)
	ctx := context.Background()

	require.NoError(t, repo.WriteDataset(ctx, "alice", raggedTable()))
	got, err := repo.ReadDataset(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, []string{"weight", "sleep", "steps", "mood"}, got.Names())
	want := raggedTable()
	for i := 0; i < 3; i++ {
		assert.Equal(t, want.Columns[i], got.Columns[i])
	}
	assert.Empty(t, got.Columns[3].Cells, "empty metric keeps its header")
}

func TestRoundTrip_EmptyTable(t *testing.T) {
	repo := New(t.TempDir(), nil)
	ctx := context.Background()

	require.NoError(t, repo.WriteDataset(ctx, "bob", &domain.Table{}))
	got, err := repo.ReadDataset(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, got.Columns)
}

func TestReadDataset_Errors(t *testing.T) {
	repo := New(t.TempDir(), nil)
	ctx := context.Background()

	_, err := repo.ReadDataset(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrDatasetAccess)

	require.NoError(t, os.WriteFile(repo.Path("junk"), []byte("weight\n1\n"), 0o644))
	_, err = repo.ReadDataset(ctx, "junk")
	assert.ErrorIs(t, err, domain.ErrMalformedDataset)
}

func TestUnflatten(t *testing.T) {
	tests := []struct {
		name    string
		rows    []CellRow
		want    *domain.Table
		wantErr bool
	}{
		{
			name: "out of order with gaps",
			rows: []CellRow{
				{Column: 0, Metric: "a", Row: 2, Cell: "|3"},
				{Column: 0, Metric: "a", Row: headerRow},
				{Column: 0, Metric: "a", Row: 0, Cell: "|1"},
			},
			want: &domain.Table{Columns: []domain.Column{
				{Name: "a", Cells: []domain.Cell{domain.TextCell("|1"), {}, domain.TextCell("|3")}},
			}},
		},
		{
			name:    "cell without header",
			rows:    []CellRow{{Column: 1, Metric: "b", Row: 0, Cell: "|1"}},
			wantErr: true,
		},
		{
			name: "missing column index",
			rows: []CellRow{
				{Column: 1, Metric: "b", Row: headerRow},
			},
			wantErr: true,
		},
		{
			name: "conflicting names",
			rows: []CellRow{
				{Column: 0, Metric: "a", Row: headerRow},
				{Column: 0, Metric: "b", Row: headerRow},
			},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Unflatten(tc.rows)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrMalformedDataset)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFlatten_HeaderPerColumn(t *testing.T) {
	rows := Flatten(raggedTable())
	var headers int
	for _, r := range rows {
		if r.Row == headerRow {
			headers++
		}
	}
	assert.Equal(t, 4, headers)
	assert.Len(t, rows, 4+3+3+3)
}
