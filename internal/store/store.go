// Package store persists the document. The canonical layout is a single
// JSON value under a fixed key: {title, segments, notes}. Two backends
// implement it: a diskv key/value store and a sqlite database.
package store

import (
	"context"
	"errors"

	"marginalia/internal/document"
)

// ErrNotFound is returned by Load when no state has been saved yet.
var ErrNotFound = errors.New("no saved state")

// StateKey is the fixed key the document is stored under.
const StateKey = "state"

type Store interface {
	Load(ctx context.Context) (*document.Document, error)
	Save(ctx context.Context, doc *document.Document) error
	Close() error
}
