package domain

// MetricLog is the history of one metric as a last-in-first-out stack.
// The head is the most recently pushed entry. Entries are kept in a slice
// whose last element is the head, so push and pop never move other entries.
type MetricLog struct {
	entries []Entry
}

// NewMetricLog returns an empty log.
func NewMetricLog() *MetricLog {
	return &MetricLog{}
}

// Push makes e the new head.
func (l *MetricLog) Push(e Entry) {
	l.entries = append(l.entries, e)
}

// Pop removes and returns the head. ok is false when the log is empty.
func (l *MetricLog) Pop() (e Entry, ok bool) {
	n := len(l.entries)
	if n == 0 {
		return Entry{}, false
	}
	e = l.entries[n-1]
	l.entries[n-1] = Entry{}
	l.entries = l.entries[:n-1]
	return e, true
}

// Peek returns the head without removing it.
func (l *MetricLog) Peek() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// IsEmpty reports whether the log holds no entries.
func (l *MetricLog) IsEmpty() bool {
	return len(l.entries) == 0
}

// Len returns the number of entries.
func (l *MetricLog) Len() int {
	return len(l.entries)
}

// Snapshot returns a copy of the entries from head to tail, most recent
// first. The log is not modified.
func (l *MetricLog) Snapshot() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
