// Package storage defines the persistence contracts shared by the
// Postgres, ClickHouse and in-memory implementations. Verdicts and
// watchlist state live in Postgres; evaluation history is append-only
// and lives in ClickHouse.
package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert violates a uniqueness
	// constraint.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when a store method receives invalid
	// parameters.
	ErrInvalidInput = errors.New("invalid input")
)
