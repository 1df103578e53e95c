package rpcpool

// ReadRequest asks the sidecar for the full contents of an object.
type ReadRequest struct {
	Name string `json:"name"`
}

// ReadResponse carries the object's bytes, or Found=false if absent.
type ReadResponse struct {
	Found bool   `json:"found"`
	Data  []byte `json:"data"`
}

// WriteFullRequest asks the sidecar to atomically replace an object.
type WriteFullRequest struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// WriteFullResponse is empty; its presence confirms the write completed.
type WriteFullResponse struct{}

// ResolvePoolNameRequest asks the sidecar's cluster membership service to
// map a numeric pool id to its name.
type ResolvePoolNameRequest struct {
	PoolID int64 `json:"poolId"`
}

// ResolvePoolNameResponse carries the resolved pool name.
type ResolvePoolNameResponse struct {
	Name string `json:"name"`
}
