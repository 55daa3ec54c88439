// Package docstore is the boundary to the document database. Every backend
// exposes the same small capability set so callers can run against the
// hosted store in production and an in-memory fake in tests.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Increment when the document does not exist.
var ErrNotFound = errors.New("document not found")

type Document struct {
	ID   string
	Data map[string]any
}

// Predicate is an equality filter on a dotted field path.
type Predicate struct {
	Field string
	Value any
}

func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

type Store interface {
	// Create inserts data under a fresh id and returns it.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	List(ctx context.Context, collection string, where ...Predicate) ([]Document, error)
	// Increment atomically adds delta to the numeric field at fieldPath.
	Increment(ctx context.Context, collection, id, fieldPath string, delta int) error
	// Set creates or replaces the document at id.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	Close() error
}
