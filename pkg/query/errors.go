package query

import "errors"

var (
	// ErrNotFound is returned when no element matches a query.
	ErrNotFound = errors.New("query: no element found")
	// ErrMultipleFound is returned when a single-element query matches more
	// than one element.
	ErrMultipleFound = errors.New("query: multiple elements found")
)
