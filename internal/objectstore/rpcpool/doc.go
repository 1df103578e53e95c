// Package rpcpool implements objectstore.Pool against a remote
// object-store / cluster-membership sidecar over gRPC. Per spec, the
// concrete object-store client and the cluster membership service that
// resolves a pool id are external collaborators out of scope for this
// tool; rpcpool gives that boundary a real, typed seam rather than an
// invented in-process implementation.
//
// The service is defined and dispatched by hand (ServiceDesc, not
// protoc-gen-go output) and uses a JSON wire codec registered under the
// "json" gRPC content-subtype, so the client and server here exchange
// plain Go structs without a protobuf toolchain step.
package rpcpool
