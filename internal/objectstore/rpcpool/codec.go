package rpcpool

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is the gRPC content-subtype this package registers its codec
// under ("application/grpc+json" on the wire).
const codecName = "json"

// jsonCodec marshals the plain request/response structs in messages.go.
// It is registered globally with the grpc encoding registry the first
// time this package is imported, mirroring how protoc-gen-go's codec
// registration works but without requiring generated types.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
