package repository

import (
	"context"

	"casevault/internal/domain/entity"
)

// WriteOptions influence how a transaction's write is scheduled.
type WriteOptions struct {
	// Bulk extends the debounce window so large imports batch into few
	// physical writes.
	Bulk bool

	// Flush forces the write to complete before Execute returns instead
	// of riding the debounce window.
	Flush bool
}

// DocumentTransaction runs a function against the authoritative document.
// The whole document is read, mutated, and scheduled for persistence as one
// unit; mutations of different entity kinds in one call are committed
// together or not at all.
type DocumentTransaction interface {
	// Execute applies fn to the current document. If fn returns an error
	// the document is left untouched and nothing is written.
	Execute(ctx context.Context, opts WriteOptions, fn func(doc *entity.Document) error) error

	// View applies fn to a read-only copy of the current document.
	View(ctx context.Context, fn func(doc *entity.Document) error) error
}
