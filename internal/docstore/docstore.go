// Package docstore is a thin adapter over a keyed document service. Every
// operation is a round trip to the backing store; there is no caching and no
// retry at this layer.
package docstore

import (
	"context"
	"errors"
)

// Document is the raw stored shape. Typed models live in internal/content.
type Document = map[string]any

// Keyed pairs a document with its identifier, for query results.
type Keyed struct {
	ID  string
	Doc Document
}

// ErrNotFound reports an absent document. Callers treat it as "use
// defaults" on singleton reads; only direct lookups surface it.
var ErrNotFound = errors.New("document not found")

type Store interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set fully replaces the document, creating it if absent.
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges only the named fields into the stored document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Add stores the document under a generated identifier and returns it.
	Add(ctx context.Context, collection string, doc Document) (string, error)
	// QueryOrdered returns every document in the collection ordered by the
	// named field. There is no filter pushdown; category filtering is done
	// by the caller.
	QueryOrdered(ctx context.Context, collection, orderField string, desc bool) ([]Keyed, error)
	// Ping reports backend reachability for readiness checks.
	Ping(ctx context.Context) error
}
