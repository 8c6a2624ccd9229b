package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

func TestTablePad(t *testing.T) {
	tbl := &domain.Table{Columns: []domain.Column{
		{Name: "weight", Cells: []domain.Cell{domain.TextCell("a"), domain.TextCell("b"), domain.TextCell("c")}},
		{Name: "sleep", Cells: []domain.Cell{domain.TextCell("d")}},
		{Name: "steps"},
	}}
	assert.Equal(t, 3, tbl.Rows())

	tbl.Pad()
	for _, c := range tbl.Columns {
		assert.Len(t, c.Cells, 3, c.Name)
	}
	assert.False(t, tbl.Columns[1].Cells[1].Valid)
	assert.False(t, tbl.Columns[2].Cells[0].Valid)
	assert.Equal(t, []string{"weight", "sleep", "steps"}, tbl.Names())
}

func TestTableValidate(t *testing.T) {
	ok := &domain.Table{Columns: []domain.Column{{Name: "a"}, {Name: "b"}}}
	assert.NoError(t, ok.Validate())

	dup := &domain.Table{Columns: []domain.Column{{Name: "a"}, {Name: "a"}}}
	assert.ErrorIs(t, dup.Validate(), domain.ErrMalformedDataset)

	blank := &domain.Table{Columns: []domain.Column{{Name: " "}}}
	assert.ErrorIs(t, blank.Validate(), domain.ErrMalformedDataset)
}
