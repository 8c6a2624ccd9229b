package domain

import "errors"

var (
	// ErrNotFound indicates that a metric name is not registered in the store.
	ErrNotFound = errors.New("metric not found")
	// ErrEmptyIntersection indicates that two metrics share no dates.
	ErrEmptyIntersection = errors.New("no common dates")
	// ErrMalformedEntry indicates that a stored entry cannot be read as a
	// (date, number) pair.
	ErrMalformedEntry = errors.New("malformed entry")
	// ErrDatasetAccess indicates that a dataset could not be read or written.
	ErrDatasetAccess = errors.New("dataset not accessible")
	// ErrMalformedDataset indicates that a dataset was read but is not a
	// valid columnar table.
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrInvalidName indicates a blank metric name.
	ErrInvalidName = errors.New("metric name must not be blank")
	// ErrInvalidDate indicates a date that is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)
