// Package domain contains the core health-tracking entities and the ports
// the application layer depends on.
package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for entry dates.
const DateLayout = "2006-01-02"

// cellSeparator splits the date from the value in a persisted cell.
const cellSeparator = "|"

// legacyTuple matches cells written as ('2024-01-01', '72').
var legacyTuple = regexp.MustCompile(`^\(\s*'([^']*)'\s*,\s*'?(.*?)'?\s*\)$`)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueNumber
	ValueText
)

// Value is a recorded measurement. It keeps the text the user entered and
// resolves it to a number only where a number is needed.
type Value struct {
	kind ValueKind
	text string
	num  float64
}

// ParseValue classifies raw input. Blank input is null, finite numbers are
// numeric, everything else is text.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Value{kind: ValueNumber, text: s, num: f}
	}
	return Value{kind: ValueText, text: s}
}

// NumberValue returns a numeric Value.
func NumberValue(f float64) Value {
	return Value{kind: ValueNumber, text: strconv.FormatFloat(f, 'f', -1, 64), num: f}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether no value was recorded.
func (v Value) IsNull() bool { return v.kind == ValueNull }

// String returns the value as it was entered.
func (v Value) String() string { return v.text }

// Float returns the numeric value or ErrMalformedEntry.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case ValueNumber:
		return v.num, nil
	case ValueNull:
		return 0, fmt.Errorf("%w: empty value", ErrMalformedEntry)
	default:
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedEntry, v.text)
	}
}

// Entry is one observation of a metric. Date is empty when the observation
// carries no date.
type Entry struct {
	Date  string
	Value Value
}

// NewEntry builds an entry from raw date and value text.
func NewEntry(date, value string) Entry {
	return Entry{Date: strings.TrimSpace(date), Value: ParseValue(value)}
}

// HasDate reports whether the entry is dated.
func (e Entry) HasDate() bool { return e.Date != "" }

// Day parses the entry date.
func (e Entry) Day() (time.Time, error) {
	if !e.HasDate() {
		return time.Time{}, fmt.Errorf("%w: missing date", ErrMalformedEntry)
	}
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrMalformedEntry, e.Date)
	}
	return t, nil
}

// Cell encodes the entry for a dataset cell as "<date>|<value>". The
// encoding is never empty, so an empty cell always means padding.
func (e Entry) Cell() string {
	return e.Date + cellSeparator + e.Value.String()
}

// String implements fmt.Stringer.
func (e Entry) String() string {
	if !e.HasDate() {
		return e.Value.String()
	}
	return e.Date + " " + e.Value.String()
}

// ParseCell decodes a dataset cell. Besides the "<date>|<value>" form it
// accepts legacy tuple cells and bare values, which yield an undated entry.
func ParseCell(cell string) Entry {
	if date, value, ok := strings.Cut(cell, cellSeparator); ok {
		return NewEntry(date, value)
	}
	if m := legacyTuple.FindStringSubmatch(strings.TrimSpace(cell)); m != nil {
		return NewEntry(m[1], m[2])
	}
	return NewEntry("", cell)
}

// ValidateDate checks that s is a YYYY-MM-DD calendar day.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// FormatDay renders t as a local calendar day.
func FormatDay(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}
