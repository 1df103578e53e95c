package rpcpool

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rzbill/cephjournaltool/internal/objectstore"
)

// serviceName is the fully-qualified RPC service name used on the wire.
const serviceName = "cephjournaltool.objectpool.v1.ObjectPool"

// Server is implemented by anything that can back the ObjectPool RPC
// service on the sidecar side.
type Server interface {
	Read(ctx context.Context, req *ReadRequest) (*ReadResponse, error)
	WriteFull(ctx context.Context, req *WriteFullRequest) (*WriteFullResponse, error)
	ResolvePoolName(ctx context.Context, req *ResolvePoolNameRequest) (*ResolvePoolNameResponse, error)
}

func readHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReadRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).Read(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Read"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Read(ctx, req.(*ReadRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func writeFullHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(WriteFullRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).WriteFull(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/WriteFull"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).WriteFull(ctx, req.(*WriteFullRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func resolvePoolNameHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ResolvePoolNameRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).ResolvePoolName(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ResolvePoolName"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).ResolvePoolName(ctx, req.(*ResolvePoolNameRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Read", Handler: readHandler},
		{MethodName: "WriteFull", Handler: writeFullHandler},
		{MethodName: "ResolvePoolName", Handler: resolvePoolNameHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpcpool",
}

// RegisterServer registers srv on s.
func RegisterServer(s *grpc.Server, srv Server) {
	s.RegisterService(&serviceDesc, srv)
}

// Client implements objectstore.Pool over a gRPC connection to the
// sidecar described in the package doc.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient wraps an already-dialed connection.
func NewClient(conn *grpc.ClientConn) *Client { return &Client{conn: conn} }

var _ objectstore.Pool = (*Client)(nil)

// Read implements objectstore.Pool.
func (c *Client) Read(ctx context.Context, name string) ([]byte, error) {
	resp := new(ReadResponse)
	req := &ReadRequest{Name: name}
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/Read", req, resp, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, objectstore.ErrNotFound
	}
	return resp.Data, nil
}

// WriteFull implements objectstore.Pool.
func (c *Client) WriteFull(ctx context.Context, name string, data []byte) error {
	resp := new(WriteFullResponse)
	req := &WriteFullRequest{Name: name, Data: data}
	return c.conn.Invoke(ctx, "/"+serviceName+"/WriteFull", req, resp, grpc.CallContentSubtype(codecName))
}

// ResolvePoolName implements objectstore.Pool.
func (c *Client) ResolvePoolName(ctx context.Context, poolID int64) (string, error) {
	resp := new(ResolvePoolNameResponse)
	req := &ResolvePoolNameRequest{PoolID: poolID}
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/ResolvePoolName", req, resp, grpc.CallContentSubtype(codecName)); err != nil {
		return "", err
	}
	return resp.Name, nil
}
