package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lukas-Talaga/TalagaLog/internal/domain"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind domain.ValueKind
		text string
	}{
		{"integer", "72", domain.ValueNumber, "72"},
		{"decimal with spaces", " 7.5 ", domain.ValueNumber, "7.5"},
		{"negative", "-3", domain.ValueNumber, "-3"},
		{"blank", "   ", domain.ValueNull, ""},
		{"word", "tired", domain.ValueText, "tired"},
		{"nan is text", "NaN", domain.ValueText, "NaN"},
		{"inf is text", "Inf", domain.ValueText, "Inf"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := domain.ParseValue(tc.in)
			assert.Equal(t, tc.kind, v.Kind())
			assert.Equal(t, tc.text, v.String())
		})
	}
}

func TestValueFloat(t *testing.T) {
	f, err := domain.ParseValue("80.5").Float()
	require.NoError(t, err)
	assert.InDelta(t, 80.5, f, 1e-9)

	_, err = domain.ParseValue("heavy").Float()
	assert.ErrorIs(t, err, domain.ErrMalformedEntry)

	_, err = domain.ParseValue("").Float()
	assert.ErrorIs(t, err, domain.ErrMalformedEntry)

	f, err = domain.NumberValue(2.25).Float()
	require.NoError(t, err)
	assert.Equal(t, 2.25, f)
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		date  string
		value string
	}{
		{"composite", "2024-01-01|72", "2024-01-01", "72"},
		{"undated composite", "|72", "", "72"},
		{"value with separator", "2024-01-01|a|b", "2024-01-01", "a|b"},
		{"legacy tuple", "('2024-01-01', '72')", "2024-01-01", "72"},
		{"legacy tuple unquoted value", "('2024-02-03', 7.5)", "2024-02-03", "7.5"},
		{"bare value", "72", "", "72"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := domain.ParseCell(tc.cell)
			assert.Equal(t, tc.date, e.Date)
			assert.Equal(t, tc.value, e.Value.String())
		})
	}
}

func TestEntryCellRoundTrip(t *testing.T) {
	for _, e := range []domain.Entry{
		domain.NewEntry("2024-05-06", "81.2"),
		domain.NewEntry("", "7"),
		domain.NewEntry("2024-05-06", ""),
	} {
		cell := e.Cell()
		assert.NotEmpty(t, cell)
		assert.Equal(t, e, domain.ParseCell(cell))
	}
}

func TestEntryDay(t *testing.T) {
	d, err := domain.NewEntry("2024-02-29", "1").Day()
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	_, err = domain.NewEntry("", "1").Day()
	assert.ErrorIs(t, err, domain.ErrMalformedEntry)

	_, err = domain.NewEntry("2024-13-01", "1").Day()
	assert.ErrorIs(t, err, domain.ErrMalformedEntry)
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, domain.ValidateDate("2024-01-31"))
	assert.ErrorIs(t, domain.ValidateDate("31/01/2024"), domain.ErrInvalidDate)
	assert.ErrorIs(t, domain.ValidateDate("2024-02-30"), domain.ErrInvalidDate)
}
