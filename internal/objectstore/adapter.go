// Package objectstore defines the blob-addressed pool abstraction the
// journal scanner, dumper, and undumper are built against. Concrete
// adapters live in sibling packages (localpool, rpcpool); callers depend
// only on the Pool interface.
package objectstore

import (
	"context"
	"errors"
)

// ErrNotFound indicates a named object does not exist in the pool. Adapter
// implementations must return this (wrapped or bare, checked with
// errors.Is) distinctly from any other I/O error: callers treat ErrNotFound
// as a recoverable data condition and everything else as fatal.
var ErrNotFound = errors.New("objectstore: object not found")

// Pool abstracts a content-addressed object store: a set of named blobs
// supporting whole-object reads and atomic full-object replacement.
// Implementations are blocking; object sizes are expected to be up to a
// few megabytes.
type Pool interface {
	// Read returns the full contents of name, or ErrNotFound if absent.
	Read(ctx context.Context, name string) ([]byte, error)
	// WriteFull atomically replaces the named object's contents.
	WriteFull(ctx context.Context, name string, data []byte) error
	// ResolvePoolName maps a numeric pool id to the pool's name, standing
	// in for the cluster membership service collaborator. Adapters with no
	// such membership service may return a synthetic name (e.g. the
	// decimal id) rather than fail.
	ResolvePoolName(ctx context.Context, poolID int64) (string, error)
}
