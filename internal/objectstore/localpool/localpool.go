// Package localpool implements a disk-resident objectstore.Pool backed by
// Pebble, used for offline inspection of a previously-dumped journal, as
// the undump target when no live cluster is reachable, and by tests
// throughout the journal package.
package localpool

import (
	"context"
	"errors"
	"strconv"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/cephjournaltool/internal/objectstore"
	pebblestore "github.com/rzbill/cephjournaltool/internal/storage/pebble"
)

// Pool is a content-addressed object store whose keys are the canonical
// object names produced by the journal namer and whose values are full
// object blobs.
type Pool struct {
	db *pebblestore.DB
}

var _ objectstore.Pool = (*Pool)(nil)

// Open opens (or creates) a local mirror pool rooted at dataDir.
func Open(dataDir string) (*Pool, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dataDir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		return nil, err
	}
	return &Pool{db: db}, nil
}

// Close closes the underlying Pebble database.
func (p *Pool) Close() error { return p.db.Close() }

// Read implements objectstore.Pool.
func (p *Pool) Read(_ context.Context, name string) ([]byte, error) {
	v, err := p.db.Get([]byte(name))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, objectstore.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// WriteFull implements objectstore.Pool.
func (p *Pool) WriteFull(_ context.Context, name string, data []byte) error {
	return p.db.Set([]byte(name), data)
}

// ResolvePoolName implements objectstore.Pool. The local mirror has no
// cluster membership service to consult, so it returns the id's decimal
// string.
func (p *Pool) ResolvePoolName(_ context.Context, poolID int64) (string, error) {
	return strconv.FormatInt(poolID, 10), nil
}
