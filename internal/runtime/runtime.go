// Package runtime wires the object-store adapter, config, and logger a
// CLI command needs into a single handle, the way flo's internal/runtime
// wires storage/config/facades for a single-node instance.
package runtime

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	cfgpkg "github.com/rzbill/cephjournaltool/internal/config"
	"github.com/rzbill/cephjournaltool/internal/journal"
	"github.com/rzbill/cephjournaltool/internal/objectstore"
	"github.com/rzbill/cephjournaltool/internal/objectstore/localpool"
	"github.com/rzbill/cephjournaltool/internal/objectstore/rpcpool"
	"github.com/rzbill/cephjournaltool/pkg/log"
)

// Options configures which pool adapter to open. GRPCAddr takes
// precedence: when set, the runtime dials the remote object-store/
// cluster-membership sidecar; otherwise it opens the local Pebble
// mirror rooted at DataDir, used for offline inspection and as the
// undump target when no live cluster is reachable.
type Options struct {
	DataDir  string
	GRPCAddr string
	Config   cfgpkg.Config
	Logger   log.Logger
}

// Runtime wires the pool adapter, config, and logger for a single CLI
// invocation.
type Runtime struct {
	pool   objectstore.Pool
	closer io.Closer
	conn   *grpc.ClientConn
	config cfgpkg.Config
	logger log.Logger
}

// Open dials the remote sidecar (GRPCAddr set) or opens the local
// mirror pool (DataDir), whichever Options asks for.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	if opts.Logger == nil {
		return nil, errors.New("runtime: logger is required")
	}

	if opts.GRPCAddr != "" {
		conn, err := grpc.DialContext(ctx, opts.GRPCAddr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, err
		}
		return &Runtime{
			pool:   rpcpool.NewClient(conn),
			conn:   conn,
			config: opts.Config,
			logger: opts.Logger,
		}, nil
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = cfgpkg.DefaultDataDir()
	}
	p, err := localpool.Open(dataDir)
	if err != nil {
		return nil, err
	}
	return &Runtime{pool: p, closer: p, config: opts.Config, logger: opts.Logger}, nil
}

// Close releases the underlying connection or local database.
func (r *Runtime) Close() error {
	var err error
	if r.closer != nil {
		err = r.closer.Close()
	}
	if r.conn != nil {
		if cerr := r.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Pool exposes the underlying object-store adapter.
func (r *Runtime) Pool() objectstore.Pool { return r.pool }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the runtime's logger.
func (r *Runtime) Logger() log.Logger { return r.logger }

// NewScanner builds a Scanner reading through this runtime's pool.
func (r *Runtime) NewScanner(opts journal.ScanOptions) *journal.Scanner {
	return journal.NewScanner(r.pool, r.logger, opts)
}
